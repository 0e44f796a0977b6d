package security

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventLogKey is the medium entry holding recent security events
const EventLogKey = "gui_ai_security_log"

// MaxEvents bounds the persisted event log
const MaxEvents = 50

// Event types
const (
	EventSuspiciousInput  = "suspicious_input"
	EventSuspiciousAPIKey = "suspicious_api_key"
	EventRateLimit        = "rate_limit_exceeded"
	EventSessionLimit     = "session_limit_exceeded"
	EventCheckpoint       = "activity_checkpoint"
)

// Medium is the key/value storage the log is persisted into
type Medium interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Event is one recorded security event
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// EventLog keeps the last MaxEvents events in plain JSON
type EventLog struct {
	mu     sync.Mutex
	medium Medium
	log    zerolog.Logger
}

// NewEventLog creates an event log over medium
func NewEventLog(medium Medium, log zerolog.Logger) *EventLog {
	return &EventLog{
		medium: medium,
		log:    log.With().Str("component", "security").Logger(),
	}
}

// Record appends an event, dropping the oldest beyond MaxEvents
func (e *EventLog) Record(eventType string, details map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Warn().Str("event", eventType).Fields(details).Msg("Security event")

	events, err := e.read()
	if err != nil {
		// A corrupt log is replaced rather than blocking new events
		e.log.Warn().Err(err).Msg("Discarding unreadable security log")
		events = nil
	}

	events = append(events, Event{Type: eventType, Timestamp: time.Now().UTC(), Details: details})
	if len(events) > MaxEvents {
		events = events[len(events)-MaxEvents:]
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal security log: %w", err)
	}
	return e.medium.Set(EventLogKey, string(data))
}

// Events returns the persisted events, oldest first
func (e *EventLog) Events() ([]Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.read()
}

// Clear removes the persisted log
func (e *EventLog) Clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.medium.Remove(EventLogKey)
}

func (e *EventLog) read() ([]Event, error) {
	raw, found, err := e.medium.Get(EventLogKey)
	if err != nil || !found {
		return nil, err
	}
	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, fmt.Errorf("failed to parse security log: %w", err)
	}
	return events, nil
}

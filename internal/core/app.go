package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/illarion/chatvault/internal/provider"
	"github.com/illarion/chatvault/internal/security"
	"github.com/illarion/chatvault/internal/storage"
	"github.com/illarion/chatvault/internal/vault"
)

// Well-known medium entries
const (
	APIsKey                = "guiAiBeta_apis_encrypted"
	ConversationsKey       = "guiAiBeta_conversations_encrypted"
	LegacyAPIsKey          = "guiAiBeta_apis"
	LegacyConversationsKey = "guiAiBeta_conversations"
	SessionKey             = "guiAiBeta_session"
	SelectedModelKey       = "guiAiBeta_selected_model"
	ThemeKey               = "gui-ai-theme"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotInitialized  = errors.New("chatvault store not found")
	ErrAPINotFound     = errors.New("API not found")
	ErrAmbiguousID     = errors.New("API id prefix matches more than one API")
	ErrDuplicateKey    = errors.New("API key already registered")
	ErrModelNotFound   = errors.New("model not available for this API")
	ErrNoModelSelected = errors.New("no model selected")
	ErrEmptyMessage    = errors.New("empty message")
	ErrInvalidTheme    = errors.New("unknown theme")
	ErrInvalidImport   = errors.New("invalid import file")
)

// API is one registered credential
type API struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Key              string      `json:"key"`
	URL              string      `json:"url"`
	Description      string      `json:"description"`
	Provider         provider.ID `json:"provider"`
	ProviderName     string      `json:"providerName"`
	CreatedAt        time.Time   `json:"createdAt"`
	LastUsed         *time.Time  `json:"lastUsed"`
	SessionID        string      `json:"sessionId"`
	ConnectionStatus string      `json:"connectionStatus"`
}

// Turn is one user message and the reply it got
type Turn struct {
	User      string    `json:"user"`
	AI        string    `json:"ai"`
	Timestamp time.Time `json:"timestamp"`
	APIID     string    `json:"apiId"`
	ModelID   string    `json:"modelId"`
}

// Options configures an App
type Options struct {
	Logger     zerolog.Logger
	Cipher     vault.CipherMode
	DefaultURL string
	Timeout    time.Duration
	// WorkDir confines import and export files. Defaults to the store's directory.
	WorkDir string
	// Create opens the store even if the file does not exist yet
	Create bool
}

// App is chatvault's state over one store file
type App struct {
	path      string
	db        *storage.Storage
	vault     *vault.Store
	events    *security.EventLog
	limiter   *security.Limiter
	client    *provider.Client
	validator *security.PathValidator
	log       zerolog.Logger

	defaultURL string
	sessionID  string
}

// Open opens the store at path. A missing file is ErrNotInitialized unless
// opts.Create is set.
func Open(path string, opts Options) (*App, error) {
	if _, err := os.Stat(path); err != nil && !opts.Create {
		return nil, ErrNotInitialized
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(path)
	}
	validator, err := security.NewPathValidator(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path validator: %w", err)
	}

	db, err := storage.Open(path)
	if err != nil {
		validator.Close()
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Cipher == "" {
		opts.Cipher = vault.CipherAuto
	}

	log := opts.Logger.With().Str("store", path).Logger()
	return &App{
		path:       path,
		db:         db,
		vault:      vault.New(db, vault.WithLogger(log), vault.WithCipherMode(opts.Cipher)),
		events:     security.NewEventLog(db, log),
		limiter:    security.NewDefaultLimiter(),
		client:     provider.NewClient(opts.Timeout, log),
		validator:  validator,
		log:        log.With().Str("component", "core").Logger(),
		defaultURL: opts.DefaultURL,
		sessionID:  uuid.NewString(),
	}, nil
}

// Close releases the store file and the working directory handle
func (a *App) Close() error {
	return errors.Join(a.db.Close(), a.validator.Close())
}

// Path returns the store file
func (a *App) Path() string {
	return a.path
}

// SessionID identifies this run. It is persisted on every save.
func (a *App) SessionID() string {
	return a.sessionID
}

// Events returns the recorded security events
func (a *App) Events() ([]security.Event, error) {
	return a.events.Events()
}

// ClearEvents empties the security event log
func (a *App) ClearEvents() error {
	return a.events.Clear()
}

// Compact rewrites the store file to reclaim space left by removed items
func (a *App) Compact() error {
	return a.db.Compact()
}

// allow consumes one action from the limiter and records what it decides
func (a *App) allow(action string) error {
	checkpoint, err := a.limiter.Allow(time.Now())
	switch {
	case errors.Is(err, security.ErrRateLimited):
		a.record(security.EventRateLimit, map[string]any{"action": action})
		return err
	case errors.Is(err, security.ErrSessionLimit):
		a.record(security.EventSessionLimit, map[string]any{"action": action, "actions": a.limiter.Actions()})
		return err
	case err != nil:
		return err
	}

	if checkpoint {
		a.record(security.EventCheckpoint, map[string]any{
			"actions":  a.limiter.Actions(),
			"duration": a.limiter.SessionDuration(time.Now()).String(),
		})
	}
	return nil
}

func (a *App) record(eventType string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	details["session"] = a.sessionID
	if err := a.events.Record(eventType, details); err != nil {
		a.log.Warn().Err(err).Str("event", eventType).Msg("Failed to persist security event")
	}
}

package security

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	MaxRequestsPerMinute  = 30
	MaxActionsPerSession  = 100
	checkpointEveryAction = 10
)

var (
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrSessionLimit = errors.New("session action limit exceeded")
)

// Limiter throttles user actions with a per-minute token bucket and a hard
// cap per session.
type Limiter struct {
	mu         sync.Mutex
	bucket     *rate.Limiter
	actions    int
	maxActions int
	startedAt  time.Time
}

// NewLimiter creates a limiter allowing perMinute requests per minute and
// maxActions actions in total
func NewLimiter(perMinute, maxActions int, now time.Time) *Limiter {
	return &Limiter{
		bucket:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		maxActions: maxActions,
		startedAt:  now,
	}
}

// NewDefaultLimiter uses 30 requests/minute and 100 actions per session
func NewDefaultLimiter() *Limiter {
	return NewLimiter(MaxRequestsPerMinute, MaxActionsPerSession, time.Now())
}

// Allow consumes one action. checkpoint is true every tenth action.
func (l *Limiter) Allow(now time.Time) (checkpoint bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.actions >= l.maxActions {
		return false, ErrSessionLimit
	}
	if !l.bucket.AllowN(now, 1) {
		return false, ErrRateLimited
	}

	l.actions++
	return l.actions%checkpointEveryAction == 0, nil
}

// Actions returns the number of actions taken this session
func (l *Limiter) Actions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.actions
}

// SessionDuration returns how long the session has been running at now
func (l *Limiter) SessionDuration(now time.Time) time.Duration {
	return now.Sub(l.startedAt)
}

// Reset starts a new session
func (l *Limiter) Reset(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = 0
	l.startedAt = now
	l.bucket = rate.NewLimiter(l.bucket.Limit(), l.bucket.Burst())
}

package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"mdcheck/internal/domain"
)

const UnknownIdentifier = "unknown"

// Settings are shared by every Store implementation.
type Settings struct {
	Limit  int
	Window time.Duration
}

// Store records one hit for identifier at now and returns the resulting
// sliding-window decision. Rejected hits are not recorded.
type Store interface {
	Hit(ctx context.Context, identifier string, now time.Time) (domain.RateLimitDecision, error)
	Name() string
}

// Limiter caps checks per client identifier.
type Limiter struct {
	store    Store
	settings Settings
	now      func() time.Time
}

func NewLimiter(store Store, settings Settings) *Limiter {
	return &Limiter{
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// Check consults the store once. Backend failures fail open so an outage of
// the shared store never takes the service down.
func (l *Limiter) Check(ctx context.Context, identifier string) domain.RateLimitDecision {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = UnknownIdentifier
	}

	now := l.now()
	decision, err := l.store.Hit(ctx, identifier, now)
	if err != nil {
		log.Warn("rate limit backend unavailable, allowing request", "backend", l.store.Name(), "error", err)
		return domain.RateLimitDecision{
			Allowed:        true,
			Limit:          l.settings.Limit,
			Remaining:      l.settings.Limit,
			ResetAtEpochMs: now.Add(l.settings.Window).UnixMilli(),
		}
	}
	return decision
}

// Backend names the active store.
func (l *Limiter) Backend() string {
	return l.store.Name()
}

// Store exposes the underlying store, e.g. for periodic sweeping.
func (l *Limiter) Store() Store {
	return l.store
}

func decide(limit int, count int, allowed bool, oldestMs, nowMs, windowMs int64) domain.RateLimitDecision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	reset := nowMs + windowMs
	if count > 0 {
		reset = oldestMs + windowMs
	}
	return domain.RateLimitDecision{
		Allowed:        allowed,
		Limit:          limit,
		Remaining:      remaining,
		ResetAtEpochMs: reset,
	}
}

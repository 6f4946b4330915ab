package ratelimit

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"mdcheck/internal/config"
	"mdcheck/internal/support"
)

// New inspects the configuration once and returns a limiter backed by Redis
// when REDIS_URL is set, otherwise by the in-process store. The returned
// close function releases backend resources.
func New(ctx context.Context, cfg config.Config) (*Limiter, func() error, error) {
	settings := Settings{Limit: cfg.RateLimitMax, Window: cfg.RateLimitWindow}

	if !cfg.UsesRedis() {
		log.Warn("REDIS_URL not set, using in-process rate limiter (single instance only)")
		return NewLimiter(NewMemoryStore(settings), settings), func() error { return nil }, nil
	}

	client, err := support.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("rate limit backend: %w", err)
	}
	log.Info("using redis rate limiter", "limit", settings.Limit, "window", settings.Window)

	return NewLimiter(NewRedisStore(client, settings), settings), client.Close, nil
}

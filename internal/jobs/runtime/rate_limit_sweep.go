package runtime

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

const DefaultSweepInterval = time.Minute

// Sweeper drops rate-limit state that has aged out of the window.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// RunRateLimitSweep calls sweeper on every tick until ctx is cancelled.
func RunRateLimitSweep(ctx context.Context, sweeper Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := sweeper.Sweep(now); removed > 0 {
				log.Debug("Rate limit buckets swept", "removed", removed, "remaining", sweeper.Len())
			}
		}
	}
}

// LaunchRateLimitSweep runs the sweep loop in the background.
func LaunchRateLimitSweep(parent context.Context, sweeper Sweeper, interval time.Duration) context.CancelFunc {
	ctx, cancel := context.WithCancel(parent)
	go RunRateLimitSweep(ctx, sweeper, interval)
	return cancel
}

package runtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"mdcheck/internal/ratelimit"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) Sweep(time.Time) int {
	s.calls.Add(1)
	return 1
}

func (s *countingSweeper) Len() int {
	return 0
}

func TestRunRateLimitSweepStopsOnCancel(t *testing.T) {
	sweeper := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunRateLimitSweep(ctx, sweeper, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper was not called on ticks")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop did not stop after cancel")
	}
}

func TestLaunchRateLimitSweepEvictsMemoryBuckets(t *testing.T) {
	settings := ratelimit.Settings{Limit: 5, Window: 10 * time.Millisecond}
	store := ratelimit.NewMemoryStore(settings)
	if _, err := store.Hit(context.Background(), "203.0.113.7", time.Now()); err != nil {
		t.Fatalf("Hit returned error: %v", err)
	}

	cancel := LaunchRateLimitSweep(context.Background(), store, 5*time.Millisecond)
	defer cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if store.Len() == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("expired bucket was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

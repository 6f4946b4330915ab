package ratelimit

import (
	"context"
	"sync"
	"time"

	"mdcheck/internal/domain"
)

// MemoryStore keeps an ordered log of hit timestamps per identifier. It is
// not shared between processes and is only correct for a single instance.
// Each identifier has its own lock, so unrelated identifiers never contend.
type MemoryStore struct {
	settings Settings
	buckets  sync.Map // identifier -> *memoryBucket
}

type memoryBucket struct {
	mu      sync.Mutex
	events  []int64
	evicted bool
}

func NewMemoryStore(settings Settings) *MemoryStore {
	return &MemoryStore{settings: settings}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Hit(_ context.Context, identifier string, now time.Time) (domain.RateLimitDecision, error) {
	nowMs := now.UnixMilli()
	windowMs := s.settings.Window.Milliseconds()

	for {
		bucket := s.bucket(identifier)

		bucket.mu.Lock()
		if bucket.evicted {
			// Swept between lookup and lock; take the replacement.
			bucket.mu.Unlock()
			continue
		}

		bucket.prune(nowMs - windowMs)
		allowed := len(bucket.events) < s.settings.Limit
		if allowed {
			bucket.events = append(bucket.events, nowMs)
		}

		var oldest int64
		if len(bucket.events) > 0 {
			oldest = bucket.events[0]
		}
		decision := decide(s.settings.Limit, len(bucket.events), allowed, oldest, nowMs, windowMs)
		bucket.mu.Unlock()

		return decision, nil
	}
}

// Sweep drops identifiers whose events have all left the window and returns
// how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	cutoff := now.UnixMilli() - s.settings.Window.Milliseconds()
	removed := 0

	s.buckets.Range(func(key, value any) bool {
		bucket := value.(*memoryBucket)
		bucket.mu.Lock()
		bucket.prune(cutoff)
		if len(bucket.events) == 0 {
			bucket.evicted = true
			s.buckets.CompareAndDelete(key, value)
			removed++
		}
		bucket.mu.Unlock()
		return true
	})

	return removed
}

func (s *MemoryStore) bucket(identifier string) *memoryBucket {
	if existing, ok := s.buckets.Load(identifier); ok {
		return existing.(*memoryBucket)
	}
	actual, _ := s.buckets.LoadOrStore(identifier, &memoryBucket{})
	return actual.(*memoryBucket)
}

// prune removes events at or before cutoff; an event at T leaves the window
// exactly at T+window.
func (b *memoryBucket) prune(cutoff int64) {
	i := 0
	for i < len(b.events) && b.events[i] <= cutoff {
		i++
	}
	if i > 0 {
		b.events = append(b.events[:0], b.events[i:]...)
	}
}

// Len reports how many identifiers currently hold state.
func (s *MemoryStore) Len() int {
	n := 0
	s.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

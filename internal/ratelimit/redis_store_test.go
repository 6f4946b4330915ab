package ratelimit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"mdcheck/internal/config"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisStoreSlidingWindow(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, testSettings)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < testSettings.Limit; i++ {
		decision, err := store.Hit(ctx, "203.0.113.7", base.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("hit %d: %v", i+1, err)
		}
		if !decision.Allowed {
			t.Fatalf("hit %d rejected, want allowed", i+1)
		}
		if want := testSettings.Limit - (i + 1); decision.Remaining != want {
			t.Fatalf("hit %d remaining = %d, want %d", i+1, decision.Remaining, want)
		}
		if want := base.Add(testSettings.Window).UnixMilli(); decision.ResetAtEpochMs != want {
			t.Fatalf("hit %d reset = %d, want %d", i+1, decision.ResetAtEpochMs, want)
		}
	}

	rejected, err := store.Hit(ctx, "203.0.113.7", base.Add(time.Minute))
	if err != nil {
		t.Fatalf("rejected hit: %v", err)
	}
	if rejected.Allowed || rejected.Remaining != 0 {
		t.Fatalf("31st hit: allowed=%v remaining=%d, want false/0", rejected.Allowed, rejected.Remaining)
	}

	fresh, err := store.Hit(ctx, "203.0.113.7", base.Add(2*testSettings.Window))
	if err != nil {
		t.Fatalf("hit after window: %v", err)
	}
	if !fresh.Allowed || fresh.Remaining != testSettings.Limit-1 {
		t.Fatalf("after full window: allowed=%v remaining=%d, want true/%d", fresh.Allowed, fresh.Remaining, testSettings.Limit-1)
	}
}

func TestRedisStoreKeysAreHashedAndExpire(t *testing.T) {
	server, client := newTestRedis(t)
	store := NewRedisStore(client, Settings{Limit: 2, Window: time.Minute})

	if _, err := store.Hit(context.Background(), "198.51.100.1", time.Now()); err != nil {
		t.Fatalf("hit: %v", err)
	}

	keys := server.Keys()
	if len(keys) != 1 {
		t.Fatalf("keys = %v, want exactly one", keys)
	}
	if !strings.HasPrefix(keys[0], redisKeyPrefix) || strings.Contains(keys[0], "198.51.100.1") {
		t.Fatalf("key %q should be a hashed identifier under %s", keys[0], redisKeyPrefix)
	}
	if ttl := server.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %s, want within (0, 1m]", ttl)
	}
}

func TestRedisStoreErrorsWhenServerDown(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisStore(client, testSettings)
	server.Close()

	if _, err := store.Hit(context.Background(), "client", time.Now()); err == nil {
		t.Fatal("expected an error when redis is unavailable")
	}
}

func TestFactorySelectsRedisWhenConfigured(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := config.Config{
		RedisURL:        "redis://" + server.Addr(),
		RateLimitMax:    2,
		RateLimitWindow: time.Minute,
	}

	limiter, closeFn, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()

	if limiter.Backend() != "redis" {
		t.Fatalf("backend = %s, want redis", limiter.Backend())
	}

	ctx := context.Background()
	limiter.Check(ctx, "client")
	limiter.Check(ctx, "client")
	if d := limiter.Check(ctx, "client"); d.Allowed {
		t.Fatal("third check should be rejected with limit 2")
	}
}

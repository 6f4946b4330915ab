package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"REDIS_URL", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "PROBE_TIMEOUT", "PROBE_MAX_CHARS", "BLOCKED_HOSTS", "DEFAULT_USER_AGENT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.UsesRedis() {
		t.Fatal("empty REDIS_URL should select the in-process store")
	}
	if cfg.RateLimitMax != DefaultRateLimitMax {
		t.Fatalf("RateLimitMax = %d, want %d", cfg.RateLimitMax, DefaultRateLimitMax)
	}
	if cfg.RateLimitWindow != DefaultRateLimitWindow {
		t.Fatalf("RateLimitWindow = %s, want %s", cfg.RateLimitWindow, DefaultRateLimitWindow)
	}
	if cfg.ProbeTimeout != DefaultProbeTimeout {
		t.Fatalf("ProbeTimeout = %s, want %s", cfg.ProbeTimeout, DefaultProbeTimeout)
	}
	if cfg.ProbeMaxChars != DefaultProbeMaxChars {
		t.Fatalf("ProbeMaxChars = %d, want %d", cfg.ProbeMaxChars, DefaultProbeMaxChars)
	}
	if cfg.DefaultUserAgent != DefaultUserAgent {
		t.Fatalf("DefaultUserAgent = %q, want %q", cfg.DefaultUserAgent, DefaultUserAgent)
	}
	if len(cfg.BlockedHosts) != 0 {
		t.Fatalf("BlockedHosts = %v, want empty", cfg.BlockedHosts)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("PROBE_TIMEOUT", "3s")
	t.Setenv("PROBE_MAX_CHARS", "100")
	t.Setenv("BLOCKED_HOSTS", "Internal.example, metadata.google.internal ,")

	cfg := Load()

	if !cfg.UsesRedis() || cfg.RedisURL != "redis://cache:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.RateLimitMax != 5 || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("rate limit = %d/%s, want 5/1m", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.ProbeTimeout != 3*time.Second || cfg.ProbeMaxChars != 100 {
		t.Fatalf("probe = %s/%d, want 3s/100", cfg.ProbeTimeout, cfg.ProbeMaxChars)
	}
	want := []string{"internal.example", "metadata.google.internal"}
	if !reflect.DeepEqual(cfg.BlockedHosts, want) {
		t.Fatalf("BlockedHosts = %v, want %v", cfg.BlockedHosts, want)
	}
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "0")
	t.Setenv("PROBE_MAX_CHARS", "-1")
	t.Setenv("PROBE_TIMEOUT", "garbage")

	cfg := Load()

	if cfg.RateLimitMax != DefaultRateLimitMax {
		t.Fatalf("RateLimitMax = %d, want default", cfg.RateLimitMax)
	}
	if cfg.ProbeMaxChars != DefaultProbeMaxChars {
		t.Fatalf("ProbeMaxChars = %d, want default", cfg.ProbeMaxChars)
	}
	if cfg.ProbeTimeout != DefaultProbeTimeout {
		t.Fatalf("ProbeTimeout = %s, want default", cfg.ProbeTimeout)
	}
}

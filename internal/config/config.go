package config

import (
	"strings"
	"time"

	"mdcheck/internal/support"
)

const (
	DefaultPort             = 8080
	DefaultRateLimitMax     = 30
	DefaultRateLimitWindow  = 10 * time.Minute
	DefaultProbeTimeout     = 10 * time.Second
	DefaultProbeMaxChars    = 50_000
	DefaultDNSTimeout       = 5 * time.Second
	DefaultShutdownGrace    = 10 * time.Second
	DefaultUserAgent        = "mdcheck/1.0 (+markdown negotiation probe)"
	DefaultCORSAllowOrigin  = "*"
	DefaultLogLevel         = "info"
	defaultBlockedHostsList = ""
)

// Config is read once at startup from the environment.
type Config struct {
	ProductionMode bool

	// RedisURL selects the shared rate-limit backend. Empty selects the
	// in-process store, which is only correct for a single instance.
	RedisURL        string
	RateLimitMax    int
	RateLimitWindow time.Duration

	ProbeTimeout     time.Duration
	ProbeMaxChars    int
	DNSTimeout       time.Duration
	DefaultUserAgent string
	BlockedHosts     []string

	CORSAllowOrigin string
	ShutdownGrace   time.Duration
	LogLevel        string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	cfg := Config{
		RedisURL:         strings.TrimSpace(support.GetEnv("REDIS_URL", "")),
		RateLimitMax:     support.GetEnvInt("RATE_LIMIT_MAX", DefaultRateLimitMax),
		RateLimitWindow:  support.GetEnvDuration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
		ProbeTimeout:     support.GetEnvDuration("PROBE_TIMEOUT", DefaultProbeTimeout),
		ProbeMaxChars:    support.GetEnvInt("PROBE_MAX_CHARS", DefaultProbeMaxChars),
		DNSTimeout:       support.GetEnvDuration("DNS_TIMEOUT", DefaultDNSTimeout),
		DefaultUserAgent: support.GetEnv("DEFAULT_USER_AGENT", DefaultUserAgent),
		BlockedHosts:     NormalizeHostEntries(support.GetEnvList("BLOCKED_HOSTS", defaultBlockedHostsList)),
		CORSAllowOrigin:  support.GetEnv("CORS_ALLOW_ORIGIN", DefaultCORSAllowOrigin),
		ShutdownGrace:    support.GetEnvDuration("SHUTDOWN_GRACE", DefaultShutdownGrace),
		LogLevel:         strings.ToLower(support.GetEnv("LOG_LEVEL", DefaultLogLevel)),
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = DefaultRateLimitMax
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = DefaultRateLimitWindow
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.ProbeMaxChars <= 0 {
		cfg.ProbeMaxChars = DefaultProbeMaxChars
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}
	if cfg.DNSTimeout <= 0 {
		cfg.DNSTimeout = DefaultDNSTimeout
	}
	if strings.TrimSpace(cfg.DefaultUserAgent) == "" {
		cfg.DefaultUserAgent = DefaultUserAgent
	}

	return cfg
}

// UsesRedis reports whether a shared rate-limit backend is configured.
func (c Config) UsesRedis() bool {
	return c.RedisURL != ""
}

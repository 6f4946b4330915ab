package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mdcheck/internal/app/server"
	"mdcheck/internal/check"
	"mdcheck/internal/config"
	"mdcheck/internal/jobs/runtime"
	"mdcheck/internal/probe"
	"mdcheck/internal/ratelimit"
	"mdcheck/internal/target"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	portFlag := flag.Int("port", config.DefaultPort, "Port for API server")
	productionFlag := flag.Bool("production", false, "Run in production mode")
	flag.Parse()

	cfg := config.Load()
	cfg.ProductionMode = *productionFlag
	configureLogger(cfg)

	port := resolvePort("PORT", "MDCHECK_PORT", *portFlag)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter, closeLimiter, err := ratelimit.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up rate limiter: %w", err)
	}
	defer func() {
		if err := closeLimiter(); err != nil {
			log.Warn("error closing rate limit backend", "error", err)
		}
	}()

	if sweeper, ok := limiter.Store().(*ratelimit.MemoryStore); ok {
		cancelSweep := runtime.LaunchRateLimitSweep(ctx, sweeper, runtime.DefaultSweepInterval)
		defer cancelSweep()
	}

	blocklist := config.NewHostBlocklist(cfg.BlockedHosts)
	if hosts := blocklist.Hosts(); len(hosts) > 0 {
		log.Info("Host blocklist loaded", "count", len(hosts), "hosts", hosts)
	}

	guard := target.NewGuard(net.DefaultResolver, blocklist, cfg.DNSTimeout)
	prober := probe.NewExecutor(target.NewSafeTransport(guard), probe.Options{
		Timeout:  cfg.ProbeTimeout,
		MaxChars: cfg.ProbeMaxChars,
	})
	checker := check.NewService(limiter, guard, prober, cfg.DefaultUserAgent)

	srv := server.NewServer(port, server.NewRouter(server.Dependencies{
		Checker:          checker,
		RateLimitBackend: limiter.Backend(),
		AllowOrigin:      cfg.CORSAllowOrigin,
	}))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("Starting API server", "port", port, "rate_limit_backend", limiter.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down API server", "grace", cfg.ShutdownGrace)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func configureLogger(cfg config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn("invalid LOG_LEVEL, using info", "value", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	if cfg.ProductionMode {
		log.SetFormatter(log.JSONFormatter)
	}
}

func resolvePort(primaryEnv, legacyEnv string, fallback int) int {
	if port := readPort(primaryEnv); port != 0 {
		return port
	}
	if port := readPort(legacyEnv); port != 0 {
		return port
	}
	return fallback
}

func readPort(envKey string) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		log.Warn("invalid port override", "env", envKey, "value", raw)
		return 0
	}
	return port
}

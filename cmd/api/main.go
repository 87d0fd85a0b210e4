// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carterperez-dev/usermgmt/internal/config"
	"github.com/carterperez-dev/usermgmt/internal/core"
	"github.com/carterperez-dev/usermgmt/internal/health"
	"github.com/carterperez-dev/usermgmt/internal/metrics"
	"github.com/carterperez-dev/usermgmt/internal/middleware"
	"github.com/carterperez-dev/usermgmt/internal/migrations"
	"github.com/carterperez-dev/usermgmt/internal/server"
	"github.com/carterperez-dev/usermgmt/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file")
	flag.Parse()

	if err := run(*configPath, *envPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath, envPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := loadDotenv(envPath); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db.SQL()); err != nil {
			return err
		}
		version, err := migrations.Version(ctx, db.SQL())
		if err != nil {
			return err
		}
		logger.Info("database schema up to date", "version", version)
	}

	healthHandler := health.NewHandler(db)

	var cache *core.Redis
	if cfg.Redis.Enabled() {
		cache, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("redis close error", "error", err)
			}
		}()
		healthHandler.WithDependency("redis", cache)
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	} else {
		logger.Info("redis not configured, rate limiting is process local")
	}

	var (
		m        *metrics.Metrics
		userOpts []user.Option
	)
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		if err := m.RegisterDBStats(db.SQL(), "users"); err != nil {
			return err
		}
		userOpts = append(userOpts, user.WithRecorder(m))
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, userOpts...)
	userHandler := user.NewHandler(userSvc)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	if m != nil {
		router.Use(m.Middleware)
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cache.LimiterClient(), middleware.RateLimitConfig{
			Limit:    middleware.LimitFromConfig(cfg.RateLimit),
			FailOpen: true,
			BypassFunc: middleware.BypassProbes(
				"/health", "/healthz", "/livez", "/readyz", cfg.Metrics.Path,
			),
		})
		defer limiter.Close()
		router.Use(limiter.Handler)
	}
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if m != nil {
		router.Handle(cfg.Metrics.Path, m.Handler())
	}

	router.Route("/api", userHandler.RegisterRoutes)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// loadDotenv reads path into the environment. Variables already set
// win, and a missing file is not an error.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"calorie/internal/backend"
	"calorie/internal/cache"
	"calorie/internal/cli"
	apphttp "calorie/internal/http"
	"calorie/internal/log"
	"calorie/internal/services"
	"calorie/internal/session"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sessions := session.NewManager(res.Store,
		session.Config{
			CacheSize:    cfg.SessionCacheSize,
			TTL:          cfg.SessionTTL,
			DefaultLimit: cfg.DefaultCalorieLimit,
		},
		session.WithLogger(logger.WithComponent(log.ComponentSession).Logger),
		session.WithListeners(services.PublisherListeners(res.Publisher)))

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register(sessions)

	tracker := services.NewTrackerService(sessions, logger.WithComponent(log.ComponentTracker))
	srv, err := apphttp.NewServer(tracker, apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Pinger:             res.Pinger,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})
	caches.StartCleanup(ctx, sweepInterval)

	logger.Info("Starting calorie server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

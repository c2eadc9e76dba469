package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shareit-dev/shareit-backend/internal/app"
	"github.com/shareit-dev/shareit-backend/internal/clock"
	"github.com/shareit-dev/shareit-backend/internal/config"
	"github.com/shareit-dev/shareit-backend/internal/db"
	"github.com/shareit-dev/shareit-backend/internal/logging"
	"github.com/shareit-dev/shareit-backend/internal/pkg/pagination"
	"github.com/shareit-dev/shareit-backend/internal/ratelimit"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg)
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply schema")
	}

	pageMode, err := pagination.ParseMode(cfg.PaginationMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid PAGINATION_MODE")
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	container := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		DBPool:         pool,
		Logger:         logger,
		Clock:          clock.System{},
		PaginationMode: pageMode,
		Limiter:        limiter,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited gracefully")
}

// newLimiter returns a nil limiter when rate limiting is disabled. Redis is used when
// configured and reachable, otherwise limits are kept per process. The returned
// func releases the redis client and is always safe to call.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ratelimit.Limiter, func()) {
	noop := func() {}
	if cfg.RateLimit.Requests <= 0 {
		return nil, noop
	}

	if cfg.Redis.Address != "" {
		client := ratelimit.NewRedisClient(cfg.Redis)
		err := client.Ping(ctx).Err()
		if err == nil {
			logger.Info().Str("redis", cfg.Redis.Address).Msg("rate limiter backed by redis")
			closeClient := func() {
				if err := client.Close(); err != nil {
					logger.Warn().Err(err).Msg("failed to close redis client")
				}
			}
			return ratelimit.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), closeClient
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to in-process rate limiter")
		_ = client.Close()
	}

	return ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), noop
}

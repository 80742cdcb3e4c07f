package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedrijvengids_backend/internal/content"
	"bedrijvengids_backend/internal/directory"
	"bedrijvengids_backend/internal/events"
	apphttp "bedrijvengids_backend/internal/http"
	"bedrijvengids_backend/internal/http/router"
	"bedrijvengids_backend/internal/matching"
	"bedrijvengids_backend/internal/quota"
	"bedrijvengids_backend/internal/scheduler"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/db"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Quota store: Redis when configured, in-memory otherwise. The memory
	// store is per-process and only suitable for single-instance deployments.
	quotaStore, closeQuotaStore := initQuotaStore(cfg, log)
	if closeQuotaStore != nil {
		defer closeQuotaStore()
	}
	quotaTracker := quota.NewTracker(quotaStore, log)

	dispatchClient, closeDispatchClient := initDispatchClient(cfg, log)
	if closeDispatchClient != nil {
		defer closeDispatchClient()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	directoryModule := directory.NewModule(pool, val, log)
	directoryModule.RegisterHandlers(eventBus)

	matchingModule, err := matching.NewModule(pool, eventBus, quotaTracker, dispatchClient, val, log, cfg)
	if err != nil {
		log.Error("failed to initialize matching module", "error", err)
		panic("failed to initialize matching module: " + err.Error())
	}

	contentModule, err := content.NewModule(ctx, quotaTracker, val, log, cfg)
	if err != nil {
		log.Error("failed to initialize content module", "error", err)
		panic("failed to initialize content module: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			directoryModule,
			matchingModule,
			contentModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initQuotaStore(cfg *config.Config, log *logger.Logger) (quota.Store, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; using in-memory quota store")
		return quota.NewMemoryStore(), nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid REDIS_URL, falling back to in-memory quota store", "error", err)
		return quota.NewMemoryStore(), nil
	}

	client := redis.NewClient(opt)
	return quota.NewRedisStore(client), func() {
		_ = client.Close()
	}
}

func initDispatchClient(cfg *config.Config, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not configured; assignment dispatch disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize dispatch client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bedrijvengids_backend/internal/email"
	"bedrijvengids_backend/internal/matching/repository"
	"bedrijvengids_backend/internal/notification"
	"bedrijvengids_backend/internal/scheduler"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/db"
	"bedrijvengids_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// expirySweepInterval is how often the stale-assignment sweep is enqueued.
const expirySweepInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	if cfg.RedisURL == "" {
		panic("REDIS_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	repo := repository.New(pool)
	sender := email.NewSender(cfg, log)
	dispatcher := notification.NewDispatcher(repo, sender, log, cfg.DispatchMaxAttempts, cfg.PublicBaseURL)
	expirer := newAssignmentExpirer(repo, cfg.AssignmentTTL)

	worker, err := scheduler.NewWorker(cfg, dispatcher, expirer, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	poller, err := scheduler.NewExpiryPoller(cfg, expirySweepInterval, log)
	if err != nil {
		log.Error("failed to initialize expiry poller", "error", err)
		panic("failed to initialize expiry poller: " + err.Error())
	}
	defer poller.Close()

	go poller.Run(ctx)

	worker.Run(ctx)
	log.Info("worker stopped")
}

// assignmentExpirer adapts the repository sweep to the worker's Expirer.
type assignmentExpirer struct {
	repo *repository.Repository
	ttl  time.Duration
}

func newAssignmentExpirer(repo *repository.Repository, ttl time.Duration) *assignmentExpirer {
	return &assignmentExpirer{repo: repo, ttl: ttl}
}

func (e *assignmentExpirer) ExpireStale(ctx context.Context) (int, error) {
	return e.repo.ExpireStalePending(ctx, e.ttl)
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

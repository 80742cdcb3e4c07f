package scheduler

import (
	"context"
	"fmt"
	"time"

	"bedrijvengids_backend/internal/notification"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Expirer transitions stale pending assignments to expired.
type Expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher *notification.Dispatcher
	expirer    Expirer
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher *notification.Dispatcher, expirer Expirer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return notification.RetryDelay(n)
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		expirer:    expirer,
		log:        log,
	}

	mux.HandleFunc(TaskAssignmentDispatch, w.handleAssignmentDispatch)
	mux.HandleFunc(TaskAssignmentExpire, w.handleAssignmentExpire)

	return w, nil
}

func (w *Worker) handleAssignmentDispatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAssignmentDispatchPayload(task)
	if err != nil {
		return err
	}

	assignmentID, err := uuid.Parse(payload.AssignmentID)
	if err != nil {
		return err
	}

	return w.dispatcher.Dispatch(ctx, assignmentID)
}

func (w *Worker) handleAssignmentExpire(ctx context.Context, _ *asynq.Task) error {
	expired, err := w.expirer.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		w.log.Info("expired stale assignments", "count", expired)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ExpiryPoller periodically enqueues the assignment expiry sweep.
type ExpiryPoller struct {
	client   *asynq.Client
	queue    string
	interval time.Duration
	log      *logger.Logger
}

func NewExpiryPoller(cfg config.SchedulerConfig, interval time.Duration, log *logger.Logger) (*ExpiryPoller, error) {
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

	return &ExpiryPoller{
		client:   asynq.NewClient(opt),
		queue:    queue,
		interval: interval,
		log:      log,
	}, nil
}

func (p *ExpiryPoller) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *ExpiryPoller) Run(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		_, err := p.client.EnqueueContext(ctx, NewAssignmentExpireTask(), asynq.Queue(p.queue))
		if err != nil {
			p.log.Warn("failed to enqueue expiry sweep", "error", err)
		}
	}
}

// Package quota provides a fixed-window action counter shared by the
// notification throttle and the AI content generation path.
package quota

import (
	"context"
	"time"

	"bedrijvengids_backend/platform/logger"
)

// Unlimited disables the quota check for a subject.
const Unlimited int64 = -1

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Store performs the atomic window bookkeeping for a subject.
// Implementations must guarantee that concurrent calls for the same subject
// serialize: the increment and the window reset are one atomic operation.
type Store interface {
	// ResetAndIncrement starts a new window if the previous one has elapsed,
	// increments the counter, and returns the post-increment count together
	// with the moment the window resets.
	ResetAndIncrement(ctx context.Context, subjectID string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Tracker enforces per-subject fixed-window quotas on top of a Store.
type Tracker struct {
	store Store
	log   *logger.Logger
}

// NewTracker creates a quota tracker.
func NewTracker(store Store, log *logger.Logger) *Tracker {
	return &Tracker{store: store, log: log}
}

// CheckAndIncrement counts one action for the subject and decides whether it
// is within quota. The counter is incremented before the comparison, so a
// denied call still consumes nothing beyond the window bookkeeping: the
// window resets exactly once per period and is never retroactively
// decremented.
func (t *Tracker) CheckAndIncrement(ctx context.Context, subjectID string, limit int64, window time.Duration) (Decision, error) {
	if limit == Unlimited {
		return Decision{Allowed: true, Remaining: Unlimited}, nil
	}

	count, resetAt, err := t.store.ResetAndIncrement(ctx, subjectID, window)
	if err != nil {
		return Decision{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= limit
	if !allowed && t.log != nil {
		t.log.Debug("quota exceeded", "subject", subjectID, "count", count, "limit", limit)
	}

	return Decision{Allowed: allowed, Remaining: remaining, ResetAt: resetAt}, nil
}

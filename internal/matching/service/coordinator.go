package service

import (
	"context"
	"time"

	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/internal/matching/ranking"
	"bedrijvengids_backend/internal/quota"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"

	"github.com/google/uuid"
)

// Enqueuer hands dispatch work to the background job queue.
type Enqueuer interface {
	EnqueueAssignmentDispatch(ctx context.Context, assignmentID, tenantID uuid.UUID) error
}

// QuotaChecker throttles per-company notification volume.
type QuotaChecker interface {
	CheckAndIncrement(ctx context.Context, subjectID string, limit int64, window time.Duration) (quota.Decision, error)
}

// Coordinator persists ranked selections as assignments and triggers their
// notification dispatch. Inserts are idempotent per (lead, company), so
// re-running a match never duplicates assignments or re-notifies companies.
type Coordinator struct {
	repo     Repository
	quotas   QuotaChecker
	enqueuer Enqueuer
	log      *logger.Logger
	quotaCfg config.QuotaConfig
}

func NewCoordinator(repo Repository, quotas QuotaChecker, enqueuer Enqueuer, log *logger.Logger, quotaCfg config.QuotaConfig) *Coordinator {
	return &Coordinator{
		repo:     repo,
		quotas:   quotas,
		enqueuer: enqueuer,
		log:      log,
		quotaCfg: quotaCfg,
	}
}

// CreateAssignments stores one pending assignment per ranked candidate.
// Only freshly created assignments enter the dispatch path; pairs that were
// already assigned keep their stored state as-is.
func (c *Coordinator) CreateAssignments(ctx context.Context, lead *domain.Lead, ranked []ranking.Ranked) ([]domain.Assignment, error) {
	assignments := make([]domain.Assignment, 0, len(ranked))

	for _, item := range ranked {
		a := domain.Assignment{
			OrganizationID: lead.OrganizationID,
			LeadID:         lead.ID,
			CompanyID:      item.Candidate.ID,
			Score:          item.Score,
			Rank:           item.Rank,
			Reasons:        item.Reasons,
			Status:         domain.StatusPending,
			DispatchStatus: domain.DispatchNone,
		}

		created, err := c.repo.CreateAssignmentIfAbsent(ctx, &a)
		if err != nil {
			return nil, err
		}
		if created {
			c.dispatch(ctx, &a)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

// dispatch enqueues the notification for a new assignment, unless the
// company's notification quota is exhausted. Dispatch failures never fail
// the match itself.
func (c *Coordinator) dispatch(ctx context.Context, a *domain.Assignment) {
	subject := "notify:" + a.CompanyID.String()
	decision, err := c.quotas.CheckAndIncrement(ctx, subject, c.quotaCfg.GetNotifyQuotaLimit(), c.quotaCfg.GetNotifyQuotaWindow())
	if err != nil {
		c.log.Error("notification quota check failed",
			"assignment_id", a.ID.String(),
			"company_id", a.CompanyID.String(),
			"error", err.Error())
		return
	}

	if !decision.Allowed {
		if err := c.repo.MarkDispatchSuppressed(ctx, a.ID); err != nil {
			c.log.Error("failed to mark dispatch suppressed",
				"assignment_id", a.ID.String(),
				"error", err.Error())
			return
		}
		a.DispatchStatus = domain.DispatchSuppressed
		c.log.DispatchEvent(a.ID.String(), "suppressed", 0, "")
		return
	}

	if err := c.enqueuer.EnqueueAssignmentDispatch(ctx, a.ID, a.OrganizationID); err != nil {
		c.log.Error("failed to enqueue assignment dispatch",
			"assignment_id", a.ID.String(),
			"error", err.Error())
	}
}

// Package notification delivers assignment offers to companies and keeps the
// per-assignment dispatch bookkeeping.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bedrijvengids_backend/internal/email"
	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/internal/matching/repository"
	"bedrijvengids_backend/internal/matching/scoring"
	"bedrijvengids_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	retryBaseDelay = 1 * time.Minute
	retryMaxDelay  = 60 * time.Minute
)

// Repository is the dispatch bookkeeping surface.
type Repository interface {
	GetDispatchContext(ctx context.Context, assignmentID uuid.UUID) (*repository.DispatchContext, error)
	RecordDispatchResult(ctx context.Context, assignmentID uuid.UUID, status domain.DispatchStatus, dispatchErr *string) error
	MarkDispatchSuppressed(ctx context.Context, assignmentID uuid.UUID) error
}

// Dispatcher sends assignment offer emails. It is invoked from the job queue
// worker; a returned error triggers a retry with backoff.
type Dispatcher struct {
	repo        Repository
	sender      email.Sender
	log         *logger.Logger
	maxAttempts int
	respondURL  string
}

func NewDispatcher(repo Repository, sender email.Sender, log *logger.Logger, maxAttempts int, respondURL string) *Dispatcher {
	return &Dispatcher{
		repo:        repo,
		sender:      sender,
		log:         log,
		maxAttempts: maxAttempts,
		respondURL:  respondURL,
	}
}

// Dispatch sends the offer email for one assignment. Assignments that are no
// longer pending are suppressed instead of notified: a withdrawal or expiry
// between enqueue and delivery must not reach the company.
func (d *Dispatcher) Dispatch(ctx context.Context, assignmentID uuid.UUID) error {
	dc, err := d.repo.GetDispatchContext(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d.log.Warn("dispatch target vanished", "assignment_id", assignmentID.String())
			return nil
		}
		return err
	}

	a := dc.Assignment
	if a.Status != domain.StatusPending {
		if err := d.repo.MarkDispatchSuppressed(ctx, a.ID); err != nil {
			return err
		}
		d.log.DispatchEvent(a.ID.String(), "suppressed", a.DispatchAttempts, "")
		return nil
	}

	if dc.CompanyEmail == nil || *dc.CompanyEmail == "" {
		msg := "company has no email address"
		if err := d.repo.RecordDispatchResult(ctx, a.ID, domain.DispatchFailed, &msg); err != nil {
			return err
		}
		d.log.DispatchEvent(a.ID.String(), "failed", a.DispatchAttempts+1, msg)
		return nil
	}

	note := ""
	if dc.LeadNote != nil {
		note = *dc.LeadNote
	}
	sendErr := d.sender.SendAssignmentOffer(ctx, *dc.CompanyEmail, email.AssignmentOfferData{
		CompanyName: dc.CompanyName,
		PostalCode:  dc.LeadPostal,
		Note:        note,
		BudgetBand:  string(dc.LeadBudget),
		TimeWindow:  string(dc.LeadWindow),
		Score:       a.Score,
		Explanation: scoring.Explanation(a.Score, a.Reasons),
		RespondURL:  fmt.Sprintf("%s/assignments/%s", d.respondURL, a.ID),
	})

	if sendErr != nil {
		msg := sendErr.Error()
		if err := d.repo.RecordDispatchResult(ctx, a.ID, domain.DispatchFailed, &msg); err != nil {
			return err
		}
		attempt := a.DispatchAttempts + 1
		d.log.DispatchEvent(a.ID.String(), "failed", attempt, msg)
		if attempt >= d.maxAttempts {
			d.log.Error("dispatch gave up", "assignment_id", a.ID.String(), "attempts", attempt)
			return nil
		}
		return sendErr
	}

	if err := d.repo.RecordDispatchResult(ctx, a.ID, domain.DispatchSent, nil); err != nil {
		return err
	}
	d.log.DispatchEvent(a.ID.String(), "sent", a.DispatchAttempts+1, "")
	return nil
}

// RetryDelay returns the backoff before retry n (1-based): the base delay
// doubles each attempt and is capped.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay || delay <= 0 {
		delay = retryMaxDelay
	}
	return delay
}

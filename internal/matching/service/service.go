package service

import (
	"context"
	"errors"
	"time"

	"bedrijvengids_backend/internal/events"
	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/internal/matching/eligibility"
	"bedrijvengids_backend/internal/matching/ranking"
	"bedrijvengids_backend/internal/matching/repository"
	"bedrijvengids_backend/internal/matching/scoring"
	"bedrijvengids_backend/internal/matching/transport"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/phone"
	"bedrijvengids_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrLeadWithdrawn      = errors.New("lead has been withdrawn")
)

// Repository is the persistence surface the matching service depends on.
type Repository interface {
	CreateLead(ctx context.Context, lead *domain.Lead) error
	GetLeadByID(ctx context.Context, organizationID, leadID uuid.UUID) (*domain.Lead, error)
	MarkLeadWithdrawn(ctx context.Context, organizationID, leadID uuid.UUID) error
	FindActiveCandidates(ctx context.Context, organizationID uuid.UUID) ([]domain.Candidate, error)
	CreateAssignmentIfAbsent(ctx context.Context, a *domain.Assignment) (bool, error)
	GetAssignmentByID(ctx context.Context, organizationID, assignmentID uuid.UUID) (*domain.Assignment, error)
	ListAssignmentsByLead(ctx context.Context, organizationID, leadID uuid.UUID) ([]domain.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID uuid.UUID, from, to domain.AssignmentStatus) error
	CancelPendingByLead(ctx context.Context, organizationID, leadID uuid.UUID) (int, error)
	ExpireStalePending(ctx context.Context, olderThan time.Duration) (int, error)
	MarkDispatchSuppressed(ctx context.Context, assignmentID uuid.UUID) error
}

type Service struct {
	repo        Repository
	engine      *scoring.Engine
	filter      *eligibility.Filter
	coordinator *Coordinator
	bus         events.Bus
	log         *logger.Logger
	cfg         config.MatchingConfig
}

func New(repo Repository, engine *scoring.Engine, filter *eligibility.Filter, coordinator *Coordinator, bus events.Bus, log *logger.Logger, cfg config.MatchingConfig) *Service {
	return &Service{
		repo:        repo,
		engine:      engine,
		filter:      filter,
		coordinator: coordinator,
		bus:         bus,
		log:         log,
		cfg:         cfg,
	}
}

// CreateAndMatch persists a new lead and immediately runs the match pipeline
// against the organization's active providers.
func (s *Service) CreateAndMatch(ctx context.Context, organizationID uuid.UUID, req transport.CreateLeadRequest) (transport.MatchResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)
	if !phone.IsValid(normalized) {
		return transport.MatchResponse{}, ErrInvalidPhone
	}

	lead := &domain.Lead{
		OrganizationID: organizationID,
		CategoryID:     req.CategoryID,
		PostalCode:     req.PostalCode,
		Phone:          normalized,
		Email:          req.Email,
		Note:           sanitize.TextPtr(req.Note),
		BudgetBand:     domain.BudgetBand(req.BudgetBand),
		TimeWindow:     domain.TimeWindow(req.TimeWindow),
	}
	if err := s.repo.CreateLead(ctx, lead); err != nil {
		return transport.MatchResponse{}, err
	}

	return s.Match(ctx, lead)
}

// Match runs the full pipeline for a lead: load pool, filter, score in
// parallel, rank, and persist the top assignments. An empty eligible pool is
// a normal outcome, not an error.
func (s *Service) Match(ctx context.Context, lead *domain.Lead) (transport.MatchResponse, error) {
	started := time.Now()

	pool, err := s.repo.FindActiveCandidates(ctx, lead.OrganizationID)
	if err != nil {
		return transport.MatchResponse{}, err
	}

	eligible := s.filter.Apply(*lead, pool)

	scored, err := s.scoreAll(ctx, lead, eligible)
	if err != nil {
		return transport.MatchResponse{}, err
	}

	ranked := ranking.SelectTop(scored, s.cfg.GetMatchTopN())

	assignments, err := s.coordinator.CreateAssignments(ctx, lead, ranked)
	if err != nil {
		return transport.MatchResponse{}, err
	}

	s.log.MatchCompleted(lead.ID.String(), len(pool), len(eligible), len(assignments), float64(time.Since(started).Microseconds())/1000.0)

	s.bus.Publish(ctx, events.LeadMatched{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		TenantID:        lead.OrganizationID,
		AssignmentCount: len(assignments),
	})

	resp := transport.MatchResponse{
		LeadID:      lead.ID,
		PoolSize:    len(pool),
		Eligible:    len(eligible),
		Assignments: make([]transport.AssignmentResponse, 0, len(assignments)),
	}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, transport.ToAssignmentResponse(a, scoring.Explanation(a.Score, a.Reasons)))
	}
	return resp, nil
}

// scoreAll scores eligible candidates concurrently. Scoring is pure per
// candidate, so results land in a pre-sized slice indexed by position.
func (s *Service) scoreAll(ctx context.Context, lead *domain.Lead, eligible []domain.Candidate) ([]ranking.Scored, error) {
	scored := make([]ranking.Scored, len(eligible))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.GetScoringConcurrency())
	for i, candidate := range eligible {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, reasons := s.engine.Score(*lead, candidate)
			scored[i] = ranking.Scored{Candidate: candidate, Score: score, Reasons: reasons}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

// Respond applies a company's accept or decline to an assignment. A response
// on an assignment that is no longer pending is ignored and the stored state
// is returned unchanged.
func (s *Service) Respond(ctx context.Context, organizationID, assignmentID uuid.UUID, accept bool) (transport.AssignmentResponse, error) {
	a, err := s.repo.GetAssignmentByID(ctx, organizationID, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return transport.AssignmentResponse{}, err
	}

	target := domain.StatusDeclined
	if accept {
		target = domain.StatusAccepted
	}

	if !domain.CanTransition(a.Status, target) {
		s.log.Warn("assignment response ignored",
			"assignment_id", assignmentID.String(),
			"current_status", string(a.Status),
			"requested_status", string(target))
		return transport.ToAssignmentResponse(*a, scoring.Explanation(a.Score, a.Reasons)), nil
	}

	if err := s.repo.UpdateAssignmentStatus(ctx, assignmentID, a.Status, target); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race to another transition; reload and report as-is.
			a, err = s.repo.GetAssignmentByID(ctx, organizationID, assignmentID)
			if err != nil {
				return transport.AssignmentResponse{}, err
			}
			return transport.ToAssignmentResponse(*a, scoring.Explanation(a.Score, a.Reasons)), nil
		}
		return transport.AssignmentResponse{}, err
	}

	s.bus.Publish(ctx, events.AssignmentResponded{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: a.ID,
		LeadID:       a.LeadID,
		CompanyID:    a.CompanyID,
		TenantID:     organizationID,
		Accepted:     accept,
	})

	a, err = s.repo.GetAssignmentByID(ctx, organizationID, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	return transport.ToAssignmentResponse(*a, scoring.Explanation(a.Score, a.Reasons)), nil
}

// Withdraw marks a lead withdrawn and cancels its pending assignments.
// Withdrawing twice is a no-op.
func (s *Service) Withdraw(ctx context.Context, organizationID, leadID uuid.UUID) error {
	if err := s.repo.MarkLeadWithdrawn(ctx, organizationID, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Already withdrawn or unknown: verify existence to distinguish.
			if _, getErr := s.repo.GetLeadByID(ctx, organizationID, leadID); getErr != nil {
				return ErrLeadNotFound
			}
			return nil
		}
		return err
	}

	cancelled, err := s.repo.CancelPendingByLead(ctx, organizationID, leadID)
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.LeadWithdrawn{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         leadID,
		TenantID:       organizationID,
		CancelledCount: cancelled,
	})
	return nil
}

// ListAssignments returns a lead's assignments ordered by rank.
func (s *Service) ListAssignments(ctx context.Context, organizationID, leadID uuid.UUID) ([]transport.AssignmentResponse, error) {
	if _, err := s.repo.GetLeadByID(ctx, organizationID, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	items, err := s.repo.ListAssignmentsByLead(ctx, organizationID, leadID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.AssignmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, transport.ToAssignmentResponse(a, scoring.Explanation(a.Score, a.Reasons)))
	}
	return out, nil
}

// ExpireStale transitions pending assignments past the configured TTL to
// expired. Invoked by the periodic scheduler task.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	return s.repo.ExpireStalePending(ctx, s.cfg.GetAssignmentTTL())
}

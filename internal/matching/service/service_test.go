package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"bedrijvengids_backend/internal/events"
	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/internal/matching/eligibility"
	"bedrijvengids_backend/internal/matching/repository"
	"bedrijvengids_backend/internal/matching/scoring"
	"bedrijvengids_backend/internal/matching/transport"
	"bedrijvengids_backend/internal/quota"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"

	"github.com/google/uuid"
)

// =============================================================================
// Fakes
// =============================================================================

type pairKey struct {
	leadID    uuid.UUID
	companyID uuid.UUID
}

type fakeRepo struct {
	mu          sync.Mutex
	leads       map[uuid.UUID]*domain.Lead
	candidates  []domain.Candidate
	assignments map[pairKey]*domain.Assignment
	suppressed  map[uuid.UUID]bool
}

func newFakeRepo(candidates []domain.Candidate) *fakeRepo {
	return &fakeRepo{
		leads:       make(map[uuid.UUID]*domain.Lead),
		candidates:  candidates,
		assignments: make(map[pairKey]*domain.Assignment),
		suppressed:  make(map[uuid.UUID]bool),
	}
}

func (r *fakeRepo) CreateLead(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	stored := *lead
	r.leads[lead.ID] = &stored
	return nil
}

func (r *fakeRepo) GetLeadByID(_ context.Context, _, leadID uuid.UUID) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[leadID]
	if !ok {
		return nil, errNotFoundForTest()
	}
	copied := *lead
	return &copied, nil
}

func (r *fakeRepo) MarkLeadWithdrawn(_ context.Context, _, leadID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead, ok := r.leads[leadID]
	if !ok || lead.Withdrawn {
		return errNotFoundForTest()
	}
	lead.Withdrawn = true
	return nil
}

func (r *fakeRepo) FindActiveCandidates(_ context.Context, _ uuid.UUID) ([]domain.Candidate, error) {
	return r.candidates, nil
}

func (r *fakeRepo) CreateAssignmentIfAbsent(_ context.Context, a *domain.Assignment) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{leadID: a.LeadID, companyID: a.CompanyID}
	if existing, ok := r.assignments[key]; ok {
		*a = *existing
		return false, nil
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	stored := *a
	r.assignments[key] = &stored
	return true, nil
}

func (r *fakeRepo) GetAssignmentByID(_ context.Context, _, assignmentID uuid.UUID) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.ID == assignmentID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, errNotFoundForTest()
}

func (r *fakeRepo) ListAssignmentsByLead(_ context.Context, _, leadID uuid.UUID) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Assignment, 0)
	for _, a := range r.assignments {
		if a.LeadID == leadID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateAssignmentStatus(_ context.Context, assignmentID uuid.UUID, from, to domain.AssignmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.ID == assignmentID && a.Status == from {
			a.Status = to
			now := time.Now()
			a.RespondedAt = &now
			return nil
		}
	}
	return errNotFoundForTest()
}

func (r *fakeRepo) CancelPendingByLead(_ context.Context, _, leadID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancelled := 0
	for _, a := range r.assignments {
		if a.LeadID == leadID && a.Status == domain.StatusPending {
			a.Status = domain.StatusCancelled
			cancelled++
		}
	}
	return cancelled, nil
}

func (r *fakeRepo) ExpireStalePending(_ context.Context, _ time.Duration) (int, error) {
	return 0, nil
}

func (r *fakeRepo) MarkDispatchSuppressed(_ context.Context, assignmentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppressed[assignmentID] = true
	for _, a := range r.assignments {
		if a.ID == assignmentID {
			a.DispatchStatus = domain.DispatchSuppressed
		}
	}
	return nil
}

func errNotFoundForTest() error {
	return repository.ErrNotFound
}

type fakeQuota struct {
	mu     sync.Mutex
	deny   bool
	counts map[string]int64
}

func (q *fakeQuota) CheckAndIncrement(_ context.Context, subjectID string, limit int64, _ time.Duration) (quota.Decision, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.counts == nil {
		q.counts = make(map[string]int64)
	}
	q.counts[subjectID]++
	if q.deny {
		return quota.Decision{Allowed: false, Remaining: 0}, nil
	}
	return quota.Decision{Allowed: true, Remaining: limit - q.counts[subjectID]}, nil
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (e *fakeEnqueuer) EnqueueAssignmentDispatch(_ context.Context, assignmentID, _ uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enqueued = append(e.enqueued, assignmentID)
	return nil
}

type testConfig struct{}

func (testConfig) GetScoringWeights() config.ScoringWeights {
	return config.ScoringWeights{Quality: 0.40, Responsiveness: 0.25, Price: 0.20, Certification: 0.15}
}
func (testConfig) GetMatchTopN() int                    { return 5 }
func (testConfig) GetPostalPrefixLength() int           { return 2 }
func (testConfig) GetScoringConcurrency() int           { return 4 }
func (testConfig) GetDispatchMaxAttempts() int          { return 5 }
func (testConfig) GetAssignmentTTL() time.Duration      { return 72 * time.Hour }
func (testConfig) GetNotifyQuotaLimit() int64           { return 25 }
func (testConfig) GetNotifyQuotaWindow() time.Duration  { return 24 * time.Hour }
func (testConfig) GetAIQuotaLimit() int64               { return 50 }
func (testConfig) GetAIQuotaWindow() time.Duration      { return 24 * time.Hour }

func newTestService(t *testing.T, repo *fakeRepo, quotas QuotaChecker, enqueuer Enqueuer) *Service {
	t.Helper()
	log := logger.New("production")
	cfg := testConfig{}

	engine, err := scoring.NewEngine(cfg.GetScoringWeights())
	if err != nil {
		t.Fatalf("unexpected error creating engine: %v", err)
	}
	filter := eligibility.NewFilter(eligibility.PostalPrefixPolicy{PrefixLength: cfg.GetPostalPrefixLength()})
	coordinator := NewCoordinator(repo, quotas, enqueuer, log, cfg)
	bus := events.NewInMemoryBus(log)
	return New(repo, engine, filter, coordinator, bus, log, cfg)
}

func activeCandidate(categoryID uuid.UUID, postal string) domain.Candidate {
	return domain.Candidate{
		ID:          uuid.New(),
		Name:        "Testbedrijf",
		CategoryIDs: []uuid.UUID{categoryID},
		PostalCode:  postal,
		Phone:       "+31612345678",
		Active:      true,
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestMatchEmptyPoolReturnsNoAssignments(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	lead := &domain.Lead{OrganizationID: uuid.New(), PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("expected empty pool to be a normal outcome, got error: %v", err)
	}
	if len(resp.Assignments) != 0 {
		t.Fatalf("expected no assignments, got %d", len(resp.Assignments))
	}
}

func TestMatchCapsAssignmentsAtTopN(t *testing.T) {
	categoryID := uuid.New()
	pool := make([]domain.Candidate, 0, 12)
	for i := 0; i < 12; i++ {
		pool = append(pool, activeCandidate(categoryID, "6711CD"))
	}
	repo := newFakeRepo(pool)
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	lead := &domain.Lead{OrganizationID: uuid.New(), CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Eligible != 12 {
		t.Fatalf("expected 12 eligible candidates, got %d", resp.Eligible)
	}
	if len(resp.Assignments) != 5 {
		t.Fatalf("expected exactly 5 assignments, got %d", len(resp.Assignments))
	}
	for i, a := range resp.Assignments {
		if a.Rank != i+1 {
			t.Fatalf("expected contiguous ranks, got rank %d at index %d", a.Rank, i)
		}
	}
}

func TestMatchTwiceIsIdempotent(t *testing.T) {
	categoryID := uuid.New()
	pool := []domain.Candidate{
		activeCandidate(categoryID, "6711CD"),
		activeCandidate(categoryID, "6722EF"),
	}
	repo := newFakeRepo(pool)
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, &fakeQuota{}, enqueuer)

	lead := &domain.Lead{OrganizationID: uuid.New(), CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetLow}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Assignments) != 2 || len(second.Assignments) != 2 {
		t.Fatalf("expected 2 assignments per run, got %d and %d", len(first.Assignments), len(second.Assignments))
	}

	firstIDs := map[uuid.UUID]bool{}
	for _, a := range first.Assignments {
		firstIDs[a.ID] = true
	}
	for _, a := range second.Assignments {
		if !firstIDs[a.ID] {
			t.Fatalf("second run produced new assignment id %s", a.ID)
		}
	}

	if len(repo.assignments) != 2 {
		t.Fatalf("expected 2 stored assignments after both runs, got %d", len(repo.assignments))
	}
	if len(enqueuer.enqueued) != 2 {
		t.Fatalf("expected dispatch enqueued once per pair, got %d", len(enqueuer.enqueued))
	}
}

func TestExhaustedNotifyQuotaSuppressesDispatch(t *testing.T) {
	categoryID := uuid.New()
	repo := newFakeRepo([]domain.Candidate{activeCandidate(categoryID, "6711CD")})
	enqueuer := &fakeEnqueuer{}
	svc := newTestService(t, repo, &fakeQuota{deny: true}, enqueuer)

	lead := &domain.Lead{OrganizationID: uuid.New(), CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("expected match to succeed despite quota denial, got: %v", err)
	}
	if len(resp.Assignments) != 1 {
		t.Fatalf("expected assignment to be created, got %d", len(resp.Assignments))
	}
	if len(enqueuer.enqueued) != 0 {
		t.Fatal("expected no dispatch enqueued when quota is exhausted")
	}
	if len(repo.suppressed) != 1 {
		t.Fatalf("expected dispatch marked suppressed, got %d", len(repo.suppressed))
	}
}

func TestRespondAcceptTransitionsPendingAssignment(t *testing.T) {
	categoryID := uuid.New()
	repo := newFakeRepo([]domain.Candidate{activeCandidate(categoryID, "6711CD")})
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	orgID := uuid.New()
	lead := &domain.Lead{OrganizationID: orgID, CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Respond(context.Background(), orgID, resp.Assignments[0].ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(domain.StatusAccepted) {
		t.Fatalf("expected status accepted, got %s", result.Status)
	}
}

func TestRespondOnTerminalAssignmentIsIgnored(t *testing.T) {
	categoryID := uuid.New()
	repo := newFakeRepo([]domain.Candidate{activeCandidate(categoryID, "6711CD")})
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	orgID := uuid.New()
	lead := &domain.Lead{OrganizationID: orgID, CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matched, err := svc.Match(context.Background(), lead)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assignmentID := matched.Assignments[0].ID

	if _, err := svc.Respond(context.Background(), orgID, assignmentID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Respond(context.Background(), orgID, assignmentID, true)
	if err != nil {
		t.Fatalf("expected late response to be a logged no-op, got: %v", err)
	}
	if result.Status != string(domain.StatusDeclined) {
		t.Fatalf("expected stored status to remain declined, got %s", result.Status)
	}
}

func TestWithdrawCancelsPendingAssignments(t *testing.T) {
	categoryID := uuid.New()
	repo := newFakeRepo([]domain.Candidate{
		activeCandidate(categoryID, "6711CD"),
		activeCandidate(categoryID, "6722EF"),
	})
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	orgID := uuid.New()
	lead := &domain.Lead{OrganizationID: orgID, CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetMedium}
	if err := repo.CreateLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Match(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Withdraw(context.Background(), orgID, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignments, err := svc.ListAssignments(context.Background(), orgID, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range assignments {
		if a.Status != string(domain.StatusCancelled) {
			t.Fatalf("expected all pending assignments cancelled, found %s", a.Status)
		}
	}

	// Withdrawing twice is a no-op.
	if err := svc.Withdraw(context.Background(), orgID, lead.ID); err != nil {
		t.Fatalf("expected repeat withdrawal to be a no-op, got: %v", err)
	}
}

func TestWithdrawUnknownLeadReturnsNotFound(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	err := svc.Withdraw(context.Background(), uuid.New(), uuid.New())
	if err != ErrLeadNotFound {
		t.Fatalf("expected ErrLeadNotFound, got: %v", err)
	}
}

func TestCreateAndMatchRejectsInvalidPhone(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := newTestService(t, repo, &fakeQuota{}, &fakeEnqueuer{})

	_, err := svc.CreateAndMatch(context.Background(), uuid.New(), transport.CreateLeadRequest{
		PostalCode: "6750AB",
		Phone:      "not-a-number",
		BudgetBand: "medium",
		TimeWindow: "flexible",
	})
	if err != ErrInvalidPhone {
		t.Fatalf("expected ErrInvalidPhone, got: %v", err)
	}
}

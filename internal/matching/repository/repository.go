package repository

import (
	"context"
	"errors"
	"time"

	"bedrijvengids_backend/internal/matching/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("record not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// =============================================================================
// Leads
// =============================================================================

func (r *Repository) CreateLead(ctx context.Context, lead *domain.Lead) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO leads (organization_id, category_id, postal_code, phone, email, note, budget_band, time_window)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, lead.OrganizationID, lead.CategoryID, lead.PostalCode, lead.Phone, lead.Email,
		lead.Note, lead.BudgetBand, lead.TimeWindow).Scan(&lead.ID, &lead.CreatedAt)
}

func (r *Repository) GetLeadByID(ctx context.Context, organizationID, leadID uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, category_id, postal_code, phone, email, note,
			budget_band, time_window, withdrawn, created_at
		FROM leads
		WHERE id = $1 AND organization_id = $2
	`, leadID, organizationID).Scan(
		&lead.ID, &lead.OrganizationID, &lead.CategoryID, &lead.PostalCode,
		&lead.Phone, &lead.Email, &lead.Note, &lead.BudgetBand, &lead.TimeWindow,
		&lead.Withdrawn, &lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *Repository) MarkLeadWithdrawn(ctx context.Context, organizationID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET withdrawn = true, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND withdrawn = false
	`, leadID, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// Candidates
// =============================================================================

// FindActiveCandidates loads all active companies of an organization together
// with their optional score profile. A company without a completed profile
// yields Profile == nil; scoring falls back to listing-derived proxies.
func (r *Repository) FindActiveCandidates(ctx context.Context, organizationID uuid.UUID) ([]domain.Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.organization_id, c.name, c.category_ids, c.postal_code, c.phone, c.email,
			c.website, c.description, c.active,
			p.quality, p.price_index, p.response_sla_minutes, p.acceptance_rate, p.certifications
		FROM companies c
		LEFT JOIN company_score_profiles p ON p.company_id = c.id
		WHERE c.organization_id = $1 AND c.active = true
		ORDER BY c.id ASC
	`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]domain.Candidate, 0)
	for rows.Next() {
		var c domain.Candidate
		var quality, priceIndex, acceptanceRate *float64
		var slaMinutes *int
		var certifications []string

		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.Name, &c.CategoryIDs, &c.PostalCode, &c.Phone, &c.Email,
			&c.Website, &c.Description, &c.Active,
			&quality, &priceIndex, &slaMinutes, &acceptanceRate, &certifications,
		); err != nil {
			return nil, err
		}

		if quality != nil {
			c.Profile = &domain.ScoreProfile{
				Quality:            *quality,
				PriceIndex:         derefFloat(priceIndex, 50),
				ResponseSLAMinutes: derefInt(slaMinutes, 0),
				AcceptanceRate:     derefFloat(acceptanceRate, 0),
				Certifications:     certifications,
			}
		}
		candidates = append(candidates, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return candidates, nil
}

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func derefFloat(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// =============================================================================
// Assignments
// =============================================================================

// CreateAssignmentIfAbsent inserts an assignment unless one already exists for
// the same (lead, company) pair. Returns the stored assignment and whether a
// new row was created. Re-running a match for a lead is therefore idempotent.
func (r *Repository) CreateAssignmentIfAbsent(ctx context.Context, a *domain.Assignment) (bool, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO assignments (organization_id, lead_id, company_id, score, rank, reasons, status, dispatch_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lead_id, company_id) DO NOTHING
		RETURNING id, created_at
	`, a.OrganizationID, a.LeadID, a.CompanyID, a.Score, a.Rank, a.Reasons,
		a.Status, a.DispatchStatus).Scan(&a.ID, &a.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// Conflict: load the existing row so callers see the stored state.
	existing, err := r.getAssignmentByPair(ctx, a.LeadID, a.CompanyID)
	if err != nil {
		return false, err
	}
	*a = *existing
	return false, nil
}

func (r *Repository) getAssignmentByPair(ctx context.Context, leadID, companyID uuid.UUID) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, lead_id, company_id, score, rank, reasons,
			status, dispatch_status, dispatch_attempts, dispatch_error, created_at, responded_at
		FROM assignments
		WHERE lead_id = $1 AND company_id = $2
	`, leadID, companyID).Scan(
		&a.ID, &a.OrganizationID, &a.LeadID, &a.CompanyID, &a.Score, &a.Rank,
		&a.Reasons, &a.Status, &a.DispatchStatus, &a.DispatchAttempts,
		&a.DispatchError, &a.CreatedAt, &a.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetAssignmentByID(ctx context.Context, organizationID, assignmentID uuid.UUID) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, lead_id, company_id, score, rank, reasons,
			status, dispatch_status, dispatch_attempts, dispatch_error, created_at, responded_at
		FROM assignments
		WHERE id = $1 AND organization_id = $2
	`, assignmentID, organizationID).Scan(
		&a.ID, &a.OrganizationID, &a.LeadID, &a.CompanyID, &a.Score, &a.Rank,
		&a.Reasons, &a.Status, &a.DispatchStatus, &a.DispatchAttempts,
		&a.DispatchError, &a.CreatedAt, &a.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) ListAssignmentsByLead(ctx context.Context, organizationID, leadID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, lead_id, company_id, score, rank, reasons,
			status, dispatch_status, dispatch_attempts, dispatch_error, created_at, responded_at
		FROM assignments
		WHERE lead_id = $1 AND organization_id = $2
		ORDER BY rank ASC
	`, leadID, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Assignment, 0)
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(
			&a.ID, &a.OrganizationID, &a.LeadID, &a.CompanyID, &a.Score, &a.Rank,
			&a.Reasons, &a.Status, &a.DispatchStatus, &a.DispatchAttempts,
			&a.DispatchError, &a.CreatedAt, &a.RespondedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// UpdateAssignmentStatus applies a status transition guarded in SQL: the row
// only changes when its current status matches the expected source state.
// Returns ErrNotFound when the guard does not match.
func (r *Repository) UpdateAssignmentStatus(ctx context.Context, assignmentID uuid.UUID, from, to domain.AssignmentStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments
		SET status = $1, responded_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, assignmentID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelPendingByLead cancels every pending assignment of a lead and reports
// how many rows changed.
func (r *Repository) CancelPendingByLead(ctx context.Context, organizationID, leadID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments
		SET status = $1, updated_at = NOW()
		WHERE lead_id = $2 AND organization_id = $3 AND status = $4
	`, domain.StatusCancelled, leadID, organizationID, domain.StatusPending)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ExpireStalePending moves pending assignments older than the cutoff to
// expired. Used by the periodic scheduler job.
func (r *Repository) ExpireStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
	`, domain.StatusExpired, domain.StatusPending, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// =============================================================================
// Dispatch bookkeeping
// =============================================================================

func (r *Repository) RecordDispatchResult(ctx context.Context, assignmentID uuid.UUID, status domain.DispatchStatus, dispatchErr *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments
		SET dispatch_status = $1, dispatch_attempts = dispatch_attempts + 1,
			dispatch_error = $2, updated_at = NOW()
		WHERE id = $3
	`, status, dispatchErr, assignmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkDispatchSuppressed(ctx context.Context, assignmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE assignments SET dispatch_status = $1, updated_at = NOW()
		WHERE id = $2
	`, domain.DispatchSuppressed, assignmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DispatchContext bundles everything the notification dispatcher needs to
// send an assignment email in one round trip.
type DispatchContext struct {
	Assignment   domain.Assignment
	CompanyName  string
	CompanyEmail *string
	LeadPostal   string
	LeadNote     *string
	LeadBudget   domain.BudgetBand
	LeadWindow   domain.TimeWindow
}

func (r *Repository) GetDispatchContext(ctx context.Context, assignmentID uuid.UUID) (*DispatchContext, error) {
	var d DispatchContext
	a := &d.Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT a.id, a.organization_id, a.lead_id, a.company_id, a.score, a.rank, a.reasons,
			a.status, a.dispatch_status, a.dispatch_attempts, a.dispatch_error, a.created_at, a.responded_at,
			c.name, c.email,
			l.postal_code, l.note, l.budget_band, l.time_window
		FROM assignments a
		JOIN companies c ON c.id = a.company_id
		JOIN leads l ON l.id = a.lead_id
		WHERE a.id = $1
	`, assignmentID).Scan(
		&a.ID, &a.OrganizationID, &a.LeadID, &a.CompanyID, &a.Score, &a.Rank,
		&a.Reasons, &a.Status, &a.DispatchStatus, &a.DispatchAttempts,
		&a.DispatchError, &a.CreatedAt, &a.RespondedAt,
		&d.CompanyName, &d.CompanyEmail,
		&d.LeadPostal, &d.LeadNote, &d.LeadBudget, &d.LeadWindow,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

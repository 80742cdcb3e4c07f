package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Company struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	CategoryIDs    []uuid.UUID
	PostalCode     string
	Phone          string
	Email          *string
	Website        *string
	Description    *string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ScoreProfile struct {
	CompanyID          uuid.UUID
	Quality            float64
	PriceIndex         float64
	ResponseSLAMinutes int
	AcceptanceRate     float64
	Certifications     []string
	AcceptedCount      int
	DeclinedCount      int
	UpdatedAt          time.Time
}

type CreateCompanyParams struct {
	OrganizationID uuid.UUID
	Name           string
	CategoryIDs    []uuid.UUID
	PostalCode     string
	Phone          string
	Email          *string
	Website        *string
	Description    *string
}

type UpdateCompanyParams struct {
	Name        string
	CategoryIDs []uuid.UUID
	PostalCode  string
	Phone       string
	Email       *string
	Website     *string
	Description *string
	Active      bool
}

func (r *Repository) Create(ctx context.Context, params CreateCompanyParams) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (organization_id, name, category_ids, postal_code, phone, email, website, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING id, organization_id, name, category_ids, postal_code, phone, email, website, description, active, created_at, updated_at
	`, params.OrganizationID, params.Name, params.CategoryIDs, params.PostalCode,
		params.Phone, params.Email, params.Website, params.Description).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.CategoryIDs, &c.PostalCode,
		&c.Phone, &c.Email, &c.Website, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *Repository) GetByID(ctx context.Context, organizationID, companyID uuid.UUID) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, category_ids, postal_code, phone, email, website, description, active, created_at, updated_at
		FROM companies
		WHERE id = $1 AND organization_id = $2
	`, companyID, organizationID).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.CategoryIDs, &c.PostalCode,
		&c.Phone, &c.Email, &c.Website, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, category_ids, postal_code, phone, email, website, description, active, created_at, updated_at
		FROM companies
		WHERE organization_id = $1 AND ($2 = false OR active = true)
		ORDER BY name ASC
	`, organizationID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Company, 0)
	for rows.Next() {
		var c Company
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.Name, &c.CategoryIDs, &c.PostalCode,
			&c.Phone, &c.Email, &c.Website, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) Update(ctx context.Context, organizationID, companyID uuid.UUID, params UpdateCompanyParams) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		UPDATE companies
		SET name = $1, category_ids = $2, postal_code = $3, phone = $4,
			email = $5, website = $6, description = $7, active = $8, updated_at = NOW()
		WHERE id = $9 AND organization_id = $10
		RETURNING id, organization_id, name, category_ids, postal_code, phone, email, website, description, active, created_at, updated_at
	`, params.Name, params.CategoryIDs, params.PostalCode, params.Phone,
		params.Email, params.Website, params.Description, params.Active,
		companyID, organizationID).Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.CategoryIDs, &c.PostalCode,
		&c.Phone, &c.Email, &c.Website, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *Repository) Deactivate(ctx context.Context, organizationID, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET active = false, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
	`, companyID, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertScoreProfile stores the rated scoring inputs for a company.
// Acceptance counters are preserved across upserts.
func (r *Repository) UpsertScoreProfile(ctx context.Context, p ScoreProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_score_profiles (company_id, quality, price_index, response_sla_minutes, acceptance_rate, certifications)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id) DO UPDATE SET
			quality = EXCLUDED.quality,
			price_index = EXCLUDED.price_index,
			response_sla_minutes = EXCLUDED.response_sla_minutes,
			acceptance_rate = EXCLUDED.acceptance_rate,
			certifications = EXCLUDED.certifications,
			updated_at = NOW()
	`, p.CompanyID, p.Quality, p.PriceIndex, p.ResponseSLAMinutes, p.AcceptanceRate, p.Certifications)
	return err
}

func (r *Repository) GetScoreProfile(ctx context.Context, companyID uuid.UUID) (ScoreProfile, error) {
	var p ScoreProfile
	err := r.pool.QueryRow(ctx, `
		SELECT company_id, quality, price_index, response_sla_minutes, acceptance_rate, certifications,
			accepted_count, declined_count, updated_at
		FROM company_score_profiles
		WHERE company_id = $1
	`, companyID).Scan(
		&p.CompanyID, &p.Quality, &p.PriceIndex, &p.ResponseSLAMinutes,
		&p.AcceptanceRate, &p.Certifications, &p.AcceptedCount, &p.DeclinedCount, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScoreProfile{}, ErrNotFound
		}
		return ScoreProfile{}, err
	}
	return p, nil
}

// RecordResponse bumps the acceptance counters and recomputes the stored
// acceptance rate in one statement. No-op when the company has no profile;
// unrated providers stay on proxy scoring.
func (r *Repository) RecordResponse(ctx context.Context, companyID uuid.UUID, accepted bool) error {
	accInc := 0
	decInc := 0
	if accepted {
		accInc = 1
	} else {
		decInc = 1
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE company_score_profiles
		SET accepted_count = accepted_count + $1,
			declined_count = declined_count + $2,
			acceptance_rate = (accepted_count + $1)::float / (accepted_count + declined_count + $1 + $2),
			updated_at = NOW()
		WHERE company_id = $3
	`, accInc, decInc, companyID)
	return err
}

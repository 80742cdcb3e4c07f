package service

import (
	"context"
	"errors"

	"bedrijvengids_backend/internal/directory/repository"
	"bedrijvengids_backend/internal/directory/transport"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/phone"
	"bedrijvengids_backend/platform/sanitize"

	"github.com/google/uuid"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, organizationID uuid.UUID, req transport.CreateCompanyRequest) (transport.CompanyResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)
	if !phone.IsValid(normalized) {
		return transport.CompanyResponse{}, ErrInvalidPhone
	}

	company, err := s.repo.Create(ctx, repository.CreateCompanyParams{
		OrganizationID: organizationID,
		Name:           sanitize.Text(req.Name),
		CategoryIDs:    req.CategoryIDs,
		PostalCode:     req.PostalCode,
		Phone:          normalized,
		Email:          req.Email,
		Website:        req.Website,
		Description:    sanitize.TextPtr(req.Description),
	})
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company, nil), nil
}

func (s *Service) GetByID(ctx context.Context, organizationID, companyID uuid.UUID) (transport.CompanyResponse, error) {
	company, err := s.repo.GetByID(ctx, organizationID, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CompanyResponse{}, ErrCompanyNotFound
		}
		return transport.CompanyResponse{}, err
	}

	profile, err := s.repo.GetScoreProfile(ctx, companyID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return transport.CompanyResponse{}, err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return toCompanyResponse(company, nil), nil
	}
	return toCompanyResponse(company, &profile), nil
}

func (s *Service) List(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]transport.CompanyResponse, error) {
	companies, err := s.repo.List(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, err
	}

	out := make([]transport.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyResponse(c, nil))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, organizationID, companyID uuid.UUID, req transport.UpdateCompanyRequest) (transport.CompanyResponse, error) {
	normalized := phone.NormalizeE164(req.Phone)
	if !phone.IsValid(normalized) {
		return transport.CompanyResponse{}, ErrInvalidPhone
	}

	company, err := s.repo.Update(ctx, organizationID, companyID, repository.UpdateCompanyParams{
		Name:        sanitize.Text(req.Name),
		CategoryIDs: req.CategoryIDs,
		PostalCode:  req.PostalCode,
		Phone:       normalized,
		Email:       req.Email,
		Website:     req.Website,
		Description: sanitize.TextPtr(req.Description),
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CompanyResponse{}, ErrCompanyNotFound
		}
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company, nil), nil
}

func (s *Service) Deactivate(ctx context.Context, organizationID, companyID uuid.UUID) error {
	err := s.repo.Deactivate(ctx, organizationID, companyID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCompanyNotFound
	}
	return err
}

// UpsertScoreProfile stores rated scoring inputs for a company. The
// acceptance rate starts at zero and is maintained from response events.
func (s *Service) UpsertScoreProfile(ctx context.Context, organizationID, companyID uuid.UUID, req transport.UpsertScoreProfileRequest) error {
	if _, err := s.repo.GetByID(ctx, organizationID, companyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}

	return s.repo.UpsertScoreProfile(ctx, repository.ScoreProfile{
		CompanyID:          companyID,
		Quality:            req.Quality,
		PriceIndex:         req.PriceIndex,
		ResponseSLAMinutes: req.ResponseSLAMinutes,
		Certifications:     req.Certifications,
	})
}

// RecordResponse updates the acceptance counters after a company responds to
// an assignment.
func (s *Service) RecordResponse(ctx context.Context, companyID uuid.UUID, accepted bool) error {
	return s.repo.RecordResponse(ctx, companyID, accepted)
}

func toCompanyResponse(c repository.Company, p *repository.ScoreProfile) transport.CompanyResponse {
	resp := transport.CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		CategoryIDs: c.CategoryIDs,
		PostalCode:  c.PostalCode,
		Phone:       c.Phone,
		Email:       c.Email,
		Website:     c.Website,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if p != nil {
		resp.Profile = &transport.ScoreProfileResponse{
			Quality:            p.Quality,
			PriceIndex:         p.PriceIndex,
			ResponseSLAMinutes: p.ResponseSLAMinutes,
			AcceptanceRate:     p.AcceptanceRate,
			Certifications:     p.Certifications,
		}
	}
	return resp
}

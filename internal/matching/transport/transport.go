// Package transport defines request/response DTOs for the matching HTTP API.
package transport

import (
	"time"

	"bedrijvengids_backend/internal/matching/domain"

	"github.com/google/uuid"
)

// CreateLeadRequest is the public intake payload. Submitting a lead
// immediately runs the match.
type CreateLeadRequest struct {
	CategoryID *uuid.UUID `json:"categoryId"`
	PostalCode string     `json:"postalCode" binding:"required,min=4,max=10"`
	Phone      string     `json:"phone" binding:"required"`
	Email      *string    `json:"email" binding:"omitempty,email"`
	Note       *string    `json:"note" binding:"omitempty,max=2000"`
	BudgetBand string     `json:"budgetBand" binding:"required,oneof=low medium high custom"`
	TimeWindow string     `json:"timeWindow" binding:"required,oneof=urgent this_week this_month flexible"`
}

// RespondRequest is a company's accept/decline on an assignment.
type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

type AssignmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	LeadID           uuid.UUID  `json:"leadId"`
	CompanyID        uuid.UUID  `json:"companyId"`
	Score            int        `json:"score"`
	Rank             int        `json:"rank"`
	Explanation      string     `json:"explanation"`
	Reasons          []string   `json:"reasons"`
	Status           string     `json:"status"`
	DispatchStatus   string     `json:"dispatchStatus"`
	DispatchAttempts int        `json:"dispatchAttempts"`
	CreatedAt        time.Time  `json:"createdAt"`
	RespondedAt      *time.Time `json:"respondedAt,omitempty"`
}

type MatchResponse struct {
	LeadID      uuid.UUID            `json:"leadId"`
	PoolSize    int                  `json:"poolSize"`
	Eligible    int                  `json:"eligible"`
	Assignments []AssignmentResponse `json:"assignments"`
}

func ToAssignmentResponse(a domain.Assignment, explanation string) AssignmentResponse {
	return AssignmentResponse{
		ID:               a.ID,
		LeadID:           a.LeadID,
		CompanyID:        a.CompanyID,
		Score:            a.Score,
		Rank:             a.Rank,
		Explanation:      explanation,
		Reasons:          a.Reasons,
		Status:           string(a.Status),
		DispatchStatus:   string(a.DispatchStatus),
		DispatchAttempts: a.DispatchAttempts,
		CreatedAt:        a.CreatedAt,
		RespondedAt:      a.RespondedAt,
	}
}

// Package domain provides core business types for the matching bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BudgetBand is the consumer's declared budget range for a service request.
type BudgetBand string

const (
	BudgetLow    BudgetBand = "low"
	BudgetMedium BudgetBand = "medium"
	BudgetHigh   BudgetBand = "high"
	BudgetCustom BudgetBand = "custom"
)

// TimeWindow is the consumer's declared timing for a service request.
type TimeWindow string

const (
	TimeUrgent    TimeWindow = "urgent"
	TimeThisWeek  TimeWindow = "this_week"
	TimeThisMonth TimeWindow = "this_month"
	TimeFlexible  TimeWindow = "flexible"
)

// Lead is an inbound service request to be matched with providers.
// A lead is immutable once scored; only the withdrawn flag may change later.
type Lead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	CategoryID     *uuid.UUID
	PostalCode     string
	Phone          string
	Email          *string
	Note           *string
	BudgetBand     BudgetBand
	TimeWindow     TimeWindow
	Withdrawn      bool
	CreatedAt      time.Time
}

// ScoreProfile holds a company's rated quality/price/responsiveness data.
// It is absent for new or unrated providers; scoring falls back to proxies.
type ScoreProfile struct {
	Quality            float64 // 0-100
	PriceIndex         float64 // 0 = cheap, 100 = premium
	ResponseSLAMinutes int
	AcceptanceRate     float64 // 0-1
	Certifications     []string
}

// Candidate is a registered service provider eligible for scoring.
type Candidate struct {
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
	Profile        *ScoreProfile
}

// ServesCategory reports whether the candidate's category set contains the given category.
func (c Candidate) ServesCategory(categoryID uuid.UUID) bool {
	for _, id := range c.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// DispatchStatus tracks notification delivery bookkeeping for an assignment.
type DispatchStatus string

const (
	DispatchNone       DispatchStatus = "none"
	DispatchSent       DispatchStatus = "sent"
	DispatchFailed     DispatchStatus = "failed"
	DispatchSuppressed DispatchStatus = "suppressed"
)

// Assignment is a persisted, ranked offer of a lead to a specific company.
// At most one assignment ever exists per (lead, company) pair.
type Assignment struct {
	ID               uuid.UUID
	OrganizationID   uuid.UUID
	LeadID           uuid.UUID
	CompanyID        uuid.UUID
	Score            int
	Rank             int
	Reasons          []string
	Status           AssignmentStatus
	DispatchStatus   DispatchStatus
	DispatchAttempts int
	DispatchError    *string
	CreatedAt        time.Time
	RespondedAt      *time.Time
}

// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"bedrijvengids_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Matching Domain Events
// =============================================================================

// LeadMatched is published after a lead has been scored, ranked, and its
// assignments persisted.
type LeadMatched struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	TenantID        uuid.UUID `json:"tenantId"`
	AssignmentCount int       `json:"assignmentCount"`
}

func (e LeadMatched) EventName() string { return "matching.lead.matched" }

// LeadWithdrawn is published when a consumer withdraws a lead; pending
// assignments have been cancelled by the time this fires.
type LeadWithdrawn struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	TenantID       uuid.UUID `json:"tenantId"`
	CancelledCount int       `json:"cancelledCount"`
}

func (e LeadWithdrawn) EventName() string { return "matching.lead.withdrawn" }

// AssignmentResponded is published when a company accepts or declines an
// assignment. The directory module uses it to maintain acceptance rates.
type AssignmentResponded struct {
	BaseEvent
	AssignmentID uuid.UUID `json:"assignmentId"`
	LeadID       uuid.UUID `json:"leadId"`
	CompanyID    uuid.UUID `json:"companyId"`
	TenantID     uuid.UUID `json:"tenantId"`
	Accepted     bool      `json:"accepted"`
}

func (e AssignmentResponded) EventName() string { return "matching.assignment.responded" }

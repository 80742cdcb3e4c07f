// Package transport defines request/response DTOs for the directory HTTP API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateCompanyRequest struct {
	Name        string      `json:"name" binding:"required,min=2,max=200"`
	CategoryIDs []uuid.UUID `json:"categoryIds"`
	PostalCode  string      `json:"postalCode" binding:"required,min=4,max=10"`
	Phone       string      `json:"phone" binding:"required"`
	Email       *string     `json:"email" binding:"omitempty,email"`
	Website     *string     `json:"website" binding:"omitempty,url"`
	Description *string     `json:"description" binding:"omitempty,max=5000"`
}

type UpdateCompanyRequest struct {
	Name        string      `json:"name" binding:"required,min=2,max=200"`
	CategoryIDs []uuid.UUID `json:"categoryIds"`
	PostalCode  string      `json:"postalCode" binding:"required,min=4,max=10"`
	Phone       string      `json:"phone" binding:"required"`
	Email       *string     `json:"email" binding:"omitempty,email"`
	Website     *string     `json:"website" binding:"omitempty,url"`
	Description *string     `json:"description" binding:"omitempty,max=5000"`
	Active      bool        `json:"active"`
}

type UpsertScoreProfileRequest struct {
	Quality            float64  `json:"quality" binding:"min=0,max=100"`
	PriceIndex         float64  `json:"priceIndex" binding:"min=0,max=100"`
	ResponseSLAMinutes int      `json:"responseSlaMinutes" binding:"min=0"`
	Certifications     []string `json:"certifications"`
}

type CompanyResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	CategoryIDs []uuid.UUID           `json:"categoryIds"`
	PostalCode  string                `json:"postalCode"`
	Phone       string                `json:"phone"`
	Email       *string               `json:"email,omitempty"`
	Website     *string               `json:"website,omitempty"`
	Description *string               `json:"description,omitempty"`
	Active      bool                  `json:"active"`
	Profile     *ScoreProfileResponse `json:"profile,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

type ScoreProfileResponse struct {
	Quality            float64  `json:"quality"`
	PriceIndex         float64  `json:"priceIndex"`
	ResponseSLAMinutes int      `json:"responseSlaMinutes"`
	AcceptanceRate     float64  `json:"acceptanceRate"`
	Certifications     []string `json:"certifications"`
}

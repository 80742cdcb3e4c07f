// Package handler exposes the matching bounded context over HTTP.
package handler

import (
	"errors"
	"net/http"

	"bedrijvengids_backend/internal/matching/service"
	"bedrijvengids_backend/internal/matching/transport"
	"bedrijvengids_backend/platform/apperr"
	"bedrijvengids_backend/platform/httpkit"
	"bedrijvengids_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles authenticated matching routes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers authenticated matching routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads/:id/assignments", h.ListAssignments)
	rg.POST("/leads/:id/withdraw", h.Withdraw)
	rg.POST("/assignments/:id/respond", h.Respond)
}

func (h *Handler) ListAssignments(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ListAssignments(c.Request.Context(), tenantID, leadID)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Withdraw(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, mapServiceError(h.svc.Withdraw(c.Request.Context(), tenantID, leadID))) {
		return
	}
	httpkit.OK(c, gin.H{"status": "withdrawn"})
}

func (h *Handler) Respond(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid assignment id", nil)
		return
	}

	var req transport.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Respond(c.Request.Context(), tenantID, assignmentID, req.Action == "accept")
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.OK(c, result)
}

// mapServiceError translates service sentinel errors into typed API errors.
func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrLeadNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return apperr.NotFound("assignment not found")
	case errors.Is(err, service.ErrInvalidPhone):
		return apperr.Validation("invalid phone number")
	default:
		return apperr.Internal("internal error")
	}
}

// Package handler exposes the company directory over HTTP.
package handler

import (
	"errors"
	"net/http"

	"bedrijvengids_backend/internal/directory/service"
	"bedrijvengids_backend/internal/directory/transport"
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

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers company directory routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Deactivate)
	rg.PUT("/:id/score-profile", h.UpsertScoreProfile)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	activeOnly := c.Query("active") == "true"
	result, err := h.svc.List(c.Request.Context(), tenantID, activeOnly)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), tenantID, companyID)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Update(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}

	var req transport.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), tenantID, companyID, req)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Deactivate(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, mapServiceError(h.svc.Deactivate(c.Request.Context(), tenantID, companyID))) {
		return
	}
	httpkit.OK(c, gin.H{"status": "deactivated"})
}

func (h *Handler) UpsertScoreProfile(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid company id", nil)
		return
	}

	var req transport.UpsertScoreProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, mapServiceError(h.svc.UpsertScoreProfile(c.Request.Context(), tenantID, companyID, req))) {
		return
	}
	httpkit.OK(c, gin.H{"status": "updated"})
}

func mapServiceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrCompanyNotFound):
		return apperr.NotFound("company not found")
	case errors.Is(err, service.ErrInvalidPhone):
		return apperr.Validation("invalid phone number")
	default:
		return apperr.Internal("internal error")
	}
}

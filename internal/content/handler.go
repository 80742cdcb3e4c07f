package content

import (
	"errors"
	"net/http"

	"bedrijvengids_backend/platform/apperr"
	"bedrijvengids_backend/platform/httpkit"
	"bedrijvengids_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type GenerateListingRequest struct {
	CompanyName    string   `json:"companyName" binding:"required,min=2,max=200"`
	Categories     []string `json:"categories"`
	Region         string   `json:"region" binding:"omitempty,max=100"`
	Certifications []string `json:"certifications"`
	Highlights     []string `json:"highlights" binding:"omitempty,max=10,dive,max=200"`
}

type GenerateListingResponse struct {
	Description string `json:"description"`
}

// Handler exposes AI listing generation.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers content generation routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/listing", h.GenerateListing)
}

func (h *Handler) GenerateListing(c *gin.Context) {
	var req GenerateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	description, err := h.svc.GenerateListing(c.Request.Context(), tenantID, ListingInput{
		CompanyName:    req.CompanyName,
		Categories:     req.Categories,
		Region:         req.Region,
		Certifications: req.Certifications,
		Highlights:     req.Highlights,
	})
	if httpkit.HandleError(c, mapContentError(err)) {
		return
	}
	httpkit.OK(c, GenerateListingResponse{Description: description})
}

func mapContentError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAIDisabled):
		return apperr.Conflict("ai content generation is not configured")
	case errors.Is(err, ErrQuotaExceeded):
		return apperr.TooManyRequests("ai generation quota exceeded")
	default:
		return apperr.Internal("listing generation failed")
	}
}

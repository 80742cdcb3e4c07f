package handler

import (
	"net/http"

	"bedrijvengids_backend/internal/matching/service"
	"bedrijvengids_backend/internal/matching/transport"
	"bedrijvengids_backend/platform/httpkit"
	"bedrijvengids_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicHandler serves the unauthenticated consumer intake form.
// The organization is addressed in the URL, not by JWT claim.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes registers public intake routes.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:orgId/leads", h.SubmitLead)
}

// SubmitLead accepts a consumer service request and runs the match
// synchronously. The response carries the ranked assignments.
func (h *PublicHandler) SubmitLead(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid organization id", nil)
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateAndMatch(c.Request.Context(), orgID, req)
	if httpkit.HandleError(c, mapServiceError(err)) {
		return
	}
	httpkit.Created(c, result)
}

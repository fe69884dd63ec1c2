// Package handler exposes the outcome-recording endpoints.
package handler

import (
	"net/http"
	"strconv"

	"lead_outcomes_backend/internal/outcomes/service"
	"lead_outcomes_backend/internal/outcomes/transport"
	"lead_outcomes_backend/internal/tenants"
	"lead_outcomes_backend/platform/httpkit"
	"lead_outcomes_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles outcome recording and history requests.
type Handler struct {
	recorder *service.Recorder
	val      *validator.Validator
}

// New creates the outcomes handler.
func New(recorder *service.Recorder, val *validator.Validator) *Handler {
	return &Handler{recorder: recorder, val: val}
}

// RegisterRoutes mounts the outcome routes on the tenant group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/outcomes", h.HandleRecordOutcome)
	group.POST("/outcomes/bulk", h.HandleRecordBulk)
	group.GET("/leads/:leadId/outcomes", h.HandleListOutcomes)
}

func (h *Handler) HandleRecordOutcome(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	var req transport.RecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	row, err := h.recorder.Record(c.Request.Context(), tenantID, service.RecordParams{
		LeadID:     req.LeadID,
		Outcome:    req.Outcome,
		OccurredAt: req.OccurredAt,
		Notes:      req.Notes,
		Override:   req.Override,
		RecordedBy: identity.PrincipalID(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, transport.ToOutcomeResponse(row))
}

func (h *Handler) HandleRecordBulk(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	var req transport.BulkRecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	result := h.recorder.RecordBulk(c.Request.Context(), tenantID, service.BulkParams{
		LeadIDs:    req.LeadIDs,
		Outcome:    req.Outcome,
		OccurredAt: req.OccurredAt,
		Notes:      req.Notes,
		Override:   req.Override,
		RecordedBy: identity.PrincipalID(),
	})

	// Partial success is an expected outcome of a bulk call; the per-lead
	// errors ride along in the 200 response.
	httpkit.OK(c, result)
}

func (h *Handler) HandleListOutcomes(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	rows, err := h.recorder.History(c.Request.Context(), tenantID, leadID, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]transport.OutcomeResponse, len(rows))
	for i, row := range rows {
		result[i] = transport.ToOutcomeResponse(row)
	}
	httpkit.OK(c, result)
}

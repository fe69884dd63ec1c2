// Package handler exposes the stale-lead view and admin alert endpoints.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"lead_outcomes_backend/internal/nudges/service"
	"lead_outcomes_backend/internal/nudges/transport"
	"lead_outcomes_backend/internal/tenants"
	"lead_outcomes_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the nudges endpoints.
type Handler struct {
	detector *service.Detector
}

// New creates the nudges handler.
func New(detector *service.Detector) *Handler {
	return &Handler{detector: detector}
}

// RegisterRoutes mounts the nudges routes on the tenant group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/leads/missing-outcomes", h.HandleMissingOutcomes)
	group.GET("/alerts", h.HandleListAlerts)
	group.POST("/alerts/:alertId/dismiss", h.HandleDismissAlert)
}

func (h *Handler) HandleMissingOutcomes(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	limit := 200
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	leads, err := h.detector.MissingOutcomes(c.Request.Context(), tenantID, time.Now(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]transport.StaleLeadResponse, len(leads))
	for i, lead := range leads {
		result[i] = transport.ToStaleLeadResponse(lead)
	}
	httpkit.OK(c, result)
}

func (h *Handler) HandleListAlerts(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	undismissedOnly := c.Query("undismissed") == "1"
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	alerts, err := h.detector.Alerts(c.Request.Context(), tenantID, undismissedOnly, limit)
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]transport.AlertResponse, len(alerts))
	for i, alert := range alerts {
		result[i] = transport.ToAlertResponse(alert)
	}
	httpkit.OK(c, result)
}

func (h *Handler) HandleDismissAlert(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	tenantID, ok := tenants.MustGetTenantID(c)
	if !ok {
		return
	}

	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid alert id", nil)
		return
	}

	if err := h.detector.Dismiss(c.Request.Context(), tenantID, alertID, identity.PrincipalID()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "alert dismissed"})
}

// Package handler exposes the win-rate query and export endpoints.
package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"lead_outcomes_backend/internal/analytics/service"
	"lead_outcomes_backend/internal/analytics/transport"
	"lead_outcomes_backend/internal/tenants"
	"lead_outcomes_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the analytics read endpoints.
type Handler struct {
	querier *service.Querier
}

// New creates the analytics handler.
func New(querier *service.Querier) *Handler {
	return &Handler{querier: querier}
}

// RegisterRoutes mounts the analytics routes on the tenant group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/analytics/win-rates/source", h.winRates(service.DimensionSource))
	group.GET("/analytics/win-rates/geo", h.winRates(service.DimensionGeo))
	group.GET("/analytics/win-rates/source/export.csv", h.exportCSV(service.DimensionSource))
	group.GET("/analytics/win-rates/geo/export.csv", h.exportCSV(service.DimensionGeo))
}

func (h *Handler) winRates(dim service.Dimension) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpkit.MustGetIdentity(c) == nil {
			return
		}
		tenantID, ok := tenants.MustGetTenantID(c)
		if !ok {
			return
		}

		params, ok := parseQueryParams(c)
		if !ok {
			return
		}

		rows, err := h.querier.WinRates(c.Request.Context(), tenantID, dim, params)
		if httpkit.HandleError(c, err) {
			return
		}

		result := make([]transport.WinRateResponse, len(rows))
		for i, row := range rows {
			result[i] = transport.ToWinRateResponse(row)
		}
		httpkit.OK(c, result)
	}
}

func (h *Handler) exportCSV(dim service.Dimension) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpkit.MustGetIdentity(c) == nil {
			return
		}
		tenantID, ok := tenants.MustGetTenantID(c)
		if !ok {
			return
		}

		params, ok := parseQueryParams(c)
		if !ok {
			return
		}
		// The export walks the full filtered range, not a page.
		params.Page = 1
		params.PageSize = 500

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=win-rates-%s.csv", dim))

		writer := csv.NewWriter(c.Writer)
		if err := writer.Write(transport.CSVHeaders()); err != nil {
			return
		}

		for {
			rows, err := h.querier.WinRates(c.Request.Context(), tenantID, dim, params)
			if httpkit.HandleError(c, err) {
				return
			}
			for _, row := range rows {
				if err := writer.Write(transport.ToWinRateResponse(row).CSV()); err != nil {
					return
				}
			}
			if len(rows) < params.PageSize {
				break
			}
			params.Page++
		}

		writer.Flush()
	}
}

func parseQueryParams(c *gin.Context) (service.QueryParams, bool) {
	params := service.QueryParams{
		FromWeek: strings.TrimSpace(c.Query("fromWeek")),
		ToWeek:   strings.TrimSpace(c.Query("toWeek")),
		Intent:   strings.TrimSpace(c.Query("intent")),
	}

	if raw := strings.TrimSpace(c.Query("minDenominator")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid minDenominator", nil)
			return service.QueryParams{}, false
		}
		params.MinDenominator = &parsed
	}

	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			params.Page = parsed
		}
	}
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			params.PageSize = parsed
		}
	}

	return params, true
}

// Package analytics provides the weekly win-rate aggregation bounded
// context: the scheduled aggregator plus the query/export endpoints.
package analytics

import (
	"lead_outcomes_backend/internal/analytics/handler"
	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/internal/analytics/service"
	apphttp "lead_outcomes_backend/internal/http"
	"lead_outcomes_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context implementing http.Module.
type Module struct {
	handler    *handler.Handler
	aggregator *service.Aggregator
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)

	return &Module{
		handler:    handler.New(service.NewQuerier(repo)),
		aggregator: service.NewAggregator(repo, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Aggregator returns the weekly aggregator for the scheduler.
func (m *Module) Aggregator() *service.Aggregator {
	return m.aggregator
}

// RegisterRoutes mounts analytics routes on the tenant-scoped group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

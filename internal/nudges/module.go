// Package nudges provides stale-lead detection and the admin alert store.
package nudges

import (
	apphttp "lead_outcomes_backend/internal/http"
	"lead_outcomes_backend/internal/nudges/handler"
	"lead_outcomes_backend/internal/nudges/repository"
	"lead_outcomes_backend/internal/nudges/service"
	"lead_outcomes_backend/platform/config"
	"lead_outcomes_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the nudges bounded context implementing http.Module.
type Module struct {
	handler  *handler.Handler
	detector *service.Detector
}

// NewModule creates and initializes the nudges module.
func NewModule(pool *pgxpool.Pool, cfg config.NudgeConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	detector := service.NewDetector(repo, log, cfg.GetStaleLeadWindow())

	return &Module{
		handler:  handler.New(detector),
		detector: detector,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "nudges"
}

// Detector returns the nudge detector for the scheduler.
func (m *Module) Detector() *service.Detector {
	return m.detector
}

// RegisterRoutes mounts nudges routes on the tenant-scoped group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package outcomes provides the outcome-ledger bounded context module.
package outcomes

import (
	apphttp "lead_outcomes_backend/internal/http"
	"lead_outcomes_backend/internal/outcomes/handler"
	"lead_outcomes_backend/internal/outcomes/repository"
	"lead_outcomes_backend/internal/outcomes/service"
	"lead_outcomes_backend/platform/logger"
	"lead_outcomes_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the outcomes bounded context implementing http.Module.
type Module struct {
	handler  *handler.Handler
	recorder *service.Recorder
}

// NewModule creates and initializes the outcomes module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	recorder := service.NewRecorder(repo, log)

	return &Module{
		handler:  handler.New(recorder, val),
		recorder: recorder,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "outcomes"
}

// Recorder returns the outcome recorder for external use.
func (m *Module) Recorder() *service.Recorder {
	return m.recorder
}

// RegisterRoutes mounts outcome routes on the tenant-scoped group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Tenant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

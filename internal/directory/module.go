// Package directory provides the company directory bounded context module.
package directory

import (
	"context"

	"bedrijvengids_backend/internal/directory/handler"
	"bedrijvengids_backend/internal/directory/repository"
	"bedrijvengids_backend/internal/directory/service"
	"bedrijvengids_backend/internal/events"
	apphttp "bedrijvengids_backend/internal/http"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the directory module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/companies"))
}

// RegisterHandlers subscribes to domain events for acceptance-rate upkeep.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.AssignmentResponded{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.AssignmentResponded:
		return m.service.RecordResponse(ctx, e.CompanyID, e.Accepted)
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

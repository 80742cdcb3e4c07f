// Package matching provides the lead matching bounded context module.
package matching

import (
	"bedrijvengids_backend/internal/events"
	apphttp "bedrijvengids_backend/internal/http"
	"bedrijvengids_backend/internal/matching/eligibility"
	"bedrijvengids_backend/internal/matching/handler"
	"bedrijvengids_backend/internal/matching/repository"
	"bedrijvengids_backend/internal/matching/scoring"
	"bedrijvengids_backend/internal/matching/service"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config combines the configuration interfaces the matching module needs.
type Config interface {
	config.MatchingConfig
	config.QuotaConfig
}

// Module is the matching bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
}

// NewModule wires the matching pipeline: repository, scoring engine,
// eligibility filter, assignment coordinator, and service.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	quotas service.QuotaChecker,
	enqueuer service.Enqueuer,
	val *validator.Validator,
	log *logger.Logger,
	cfg Config,
) (*Module, error) {
	engine, err := scoring.NewEngine(cfg.GetScoringWeights())
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	filter := eligibility.NewFilter(eligibility.PostalPrefixPolicy{PrefixLength: cfg.GetPostalPrefixLength()})
	coordinator := service.NewCoordinator(repo, quotas, enqueuer, log, cfg)
	svc := service.New(repo, engine, filter, coordinator, eventBus, log, cfg)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
		service:       svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "matching"
}

// Service returns the service layer for external use (scheduler jobs).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts matching routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/matching"))

	publicGroup := ctx.Public.Group("/intake")
	publicGroup.Use(ctx.IntakeRateLimiter.RateLimit())
	m.publicHandler.RegisterRoutes(publicGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

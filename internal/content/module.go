package content

import (
	"context"

	apphttp "bedrijvengids_backend/internal/http"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/validator"
)

// Config combines the configuration interfaces the content module needs.
type Config interface {
	config.AIConfig
	config.QuotaConfig
}

// Module is the AI content bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the Gemini generator behind the tenant quota. When no API
// key is configured the module still mounts and returns a typed error.
func NewModule(ctx context.Context, quotas QuotaChecker, val *validator.Validator, log *logger.Logger, cfg Config) (*Module, error) {
	var generator Generator
	if cfg.IsAIEnabled() {
		g, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		generator = g
	}

	svc := NewService(generator, quotas, log, cfg, cfg)
	return &Module{handler: NewHandler(svc, val)}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "content"
}

// RegisterRoutes mounts content routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/content"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

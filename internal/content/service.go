// Package content generates listing copy for companies with Gemini.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bedrijvengids_backend/internal/quota"
	"bedrijvengids_backend/platform/config"
	"bedrijvengids_backend/platform/logger"
	"bedrijvengids_backend/platform/sanitize"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

var (
	ErrAIDisabled    = errors.New("ai content generation is disabled")
	ErrQuotaExceeded = errors.New("ai generation quota exceeded")
)

// QuotaChecker throttles per-tenant generation volume.
type QuotaChecker interface {
	CheckAndIncrement(ctx context.Context, subjectID string, limit int64, window time.Duration) (quota.Decision, error)
}

// Generator produces listing descriptions from structured company facts.
type Generator interface {
	GenerateListing(ctx context.Context, input ListingInput) (string, error)
}

// ListingInput holds the facts the model writes from.
type ListingInput struct {
	CompanyName    string
	Categories     []string
	Region         string
	Certifications []string
	Highlights     []string
}

// Service guards the generator with the per-tenant quota.
type Service struct {
	generator Generator
	quotas    QuotaChecker
	log       *logger.Logger
	cfg       config.AIConfig
	quotaCfg  config.QuotaConfig
}

func NewService(generator Generator, quotas QuotaChecker, log *logger.Logger, cfg config.AIConfig, quotaCfg config.QuotaConfig) *Service {
	return &Service{
		generator: generator,
		quotas:    quotas,
		log:       log,
		cfg:       cfg,
		quotaCfg:  quotaCfg,
	}
}

// GenerateListing produces marketing copy for a company listing. Each call
// counts against the tenant's AI quota, including calls that later fail.
func (s *Service) GenerateListing(ctx context.Context, tenantID uuid.UUID, input ListingInput) (string, error) {
	if s.generator == nil || !s.cfg.IsAIEnabled() {
		return "", ErrAIDisabled
	}

	subject := "ai:" + tenantID.String()
	decision, err := s.quotas.CheckAndIncrement(ctx, subject, s.quotaCfg.GetAIQuotaLimit(), s.quotaCfg.GetAIQuotaWindow())
	if err != nil {
		return "", err
	}
	if !decision.Allowed {
		s.log.Warn("ai quota exceeded", "tenant_id", tenantID.String(), "reset_at", decision.ResetAt)
		return "", ErrQuotaExceeded
	}

	text, err := s.generator.GenerateListing(ctx, input)
	if err != nil {
		return "", err
	}
	return sanitize.Text(text), nil
}

// GeminiGenerator implements Generator on the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.GetGeminiModel()}, nil
}

func (g *GeminiGenerator) GenerateListing(ctx context.Context, input ListingInput) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildListingPrompt(input)), nil)
	if err != nil {
		return "", fmt.Errorf("generate listing: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}

func buildListingPrompt(input ListingInput) string {
	var b strings.Builder
	b.WriteString("Schrijf een korte, zakelijke bedrijfsomschrijving in het Nederlands voor een bedrijvengids.\n")
	b.WriteString("Gebruik uitsluitend de onderstaande feiten, maximaal 120 woorden, geen opsommingstekens.\n\n")
	fmt.Fprintf(&b, "Bedrijfsnaam: %s\n", input.CompanyName)
	if len(input.Categories) > 0 {
		fmt.Fprintf(&b, "Diensten: %s\n", strings.Join(input.Categories, ", "))
	}
	if input.Region != "" {
		fmt.Fprintf(&b, "Werkgebied: %s\n", input.Region)
	}
	if len(input.Certifications) > 0 {
		fmt.Fprintf(&b, "Certificeringen: %s\n", strings.Join(input.Certifications, ", "))
	}
	for _, h := range input.Highlights {
		fmt.Fprintf(&b, "Kenmerk: %s\n", h)
	}
	return b.String()
}

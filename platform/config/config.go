// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for SMTP email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetPublicBaseURL() string
}

// MatchingConfig provides settings for the lead matching engine.
type MatchingConfig interface {
	GetScoringWeights() ScoringWeights
	GetMatchTopN() int
	GetPostalPrefixLength() int
	GetScoringConcurrency() int
	GetDispatchMaxAttempts() int
	GetAssignmentTTL() time.Duration
}

// QuotaConfig provides settings for the quota tracker windows.
type QuotaConfig interface {
	GetNotifyQuotaLimit() int64
	GetNotifyQuotaWindow() time.Duration
	GetAIQuotaLimit() int64
	GetAIQuotaWindow() time.Duration
}

// AIConfig provides settings for AI-assisted content generation.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsAIEnabled() bool
}

// ScoringWeights holds the relative weight of each scoring factor.
// The four weights must sum to 1.0; Load rejects any other table.
type ScoringWeights struct {
	Quality        float64
	Responsiveness float64
	Price          float64
	Certification  float64
}

// Sum returns the total of all four weights.
func (w ScoringWeights) Sum() float64 {
	return w.Quality + w.Responsiveness + w.Price + w.Certification
}

// Config holds all application settings loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string
	PublicBaseURL    string

	Weights             ScoringWeights
	MatchTopN           int
	PostalPrefixLength  int
	ScoringConcurrency  int
	DispatchMaxAttempts int
	AssignmentTTL       time.Duration

	NotifyQuotaLimit  int64
	NotifyQuotaWindow time.Duration
	AIQuotaLimit      int64
	AIQuotaWindow     time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool      { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string   { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetPublicBaseURL() string    { return c.PublicBaseURL }

// MatchingConfig implementation
func (c *Config) GetScoringWeights() ScoringWeights { return c.Weights }
func (c *Config) GetMatchTopN() int                 { return c.MatchTopN }
func (c *Config) GetPostalPrefixLength() int        { return c.PostalPrefixLength }
func (c *Config) GetScoringConcurrency() int        { return c.ScoringConcurrency }
func (c *Config) GetDispatchMaxAttempts() int       { return c.DispatchMaxAttempts }
func (c *Config) GetAssignmentTTL() time.Duration   { return c.AssignmentTTL }

// QuotaConfig implementation
func (c *Config) GetNotifyQuotaLimit() int64          { return c.NotifyQuotaLimit }
func (c *Config) GetNotifyQuotaWindow() time.Duration { return c.NotifyQuotaWindow }
func (c *Config) GetAIQuotaLimit() int64              { return c.AIQuotaLimit }
func (c *Config) GetAIQuotaWindow() time.Duration     { return c.AIQuotaWindow }

// AIConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string  { return c.GeminiModel }
func (c *Config) IsAIEnabled() bool       { return c.GeminiAPIKey != "" }

// weightSumTolerance absorbs float parsing noise; anything beyond it is a
// genuinely wrong weight table and must abort startup.
const weightSumTolerance = 1e-9

// Load reads configuration from .env (if present) and the environment.
// Invalid weight tables or window durations are startup failures: producing
// silently wrong scores is worse than refusing to boot.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", ""))
	corsAllowAll := containsWildcard(corsOrigins) || len(corsOrigins) == 0

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSAllowAll:   corsAllowAll,
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),

		EmailEnabled:     strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true"),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Bedrijvengids"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		PublicBaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),

		Weights: ScoringWeights{
			Quality:        mustFloat(getEnv("SCORE_WEIGHT_QUALITY", "0.40")),
			Responsiveness: mustFloat(getEnv("SCORE_WEIGHT_RESPONSIVENESS", "0.25")),
			Price:          mustFloat(getEnv("SCORE_WEIGHT_PRICE", "0.20")),
			Certification:  mustFloat(getEnv("SCORE_WEIGHT_CERTIFICATION", "0.15")),
		},
		MatchTopN:           mustInt(getEnv("MATCH_TOP_N", "5")),
		PostalPrefixLength:  mustInt(getEnv("MATCH_POSTAL_PREFIX_LEN", "2")),
		ScoringConcurrency:  mustInt(getEnv("MATCH_SCORING_CONCURRENCY", "8")),
		DispatchMaxAttempts: mustInt(getEnv("DISPATCH_MAX_ATTEMPTS", "5")),
		AssignmentTTL:       mustDuration(getEnv("ASSIGNMENT_TTL", "72h")),

		NotifyQuotaLimit:  mustInt64(getEnv("NOTIFY_QUOTA_LIMIT", "25")),
		NotifyQuotaWindow: mustDuration(getEnv("NOTIFY_QUOTA_WINDOW", "24h")),
		AIQuotaLimit:      mustInt64(getEnv("AI_QUOTA_LIMIT", "50")),
		AIQuotaWindow:     mustDuration(getEnv("AI_QUOTA_WINDOW", "24h")),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS allows all origins")
	}
	if err := validateMatching(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateMatching(cfg *Config) error {
	w := cfg.Weights
	if w.Quality < 0 || w.Responsiveness < 0 || w.Price < 0 || w.Certification < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if math.Abs(w.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %v", w.Sum())
	}
	if cfg.MatchTopN < 1 {
		return fmt.Errorf("MATCH_TOP_N must be at least 1")
	}
	if cfg.PostalPrefixLength < 1 {
		return fmt.Errorf("MATCH_POSTAL_PREFIX_LEN must be at least 1")
	}
	if cfg.ScoringConcurrency < 1 {
		return fmt.Errorf("MATCH_SCORING_CONCURRENCY must be at least 1")
	}
	if cfg.NotifyQuotaWindow <= 0 || cfg.AIQuotaWindow <= 0 {
		return fmt.Errorf("quota windows must be positive durations")
	}
	if cfg.DispatchMaxAttempts < 1 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.AssignmentTTL <= 0 {
		return fmt.Errorf("ASSIGNMENT_TTL must be a positive duration")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return -1
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

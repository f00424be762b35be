// Package config loads server and CLI configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/johnswift/eclipse/internal/llm"
	"go.uber.org/zap/zapcore"
)

// ErrDatabaseURLRequired is returned by RequireDatabase when DATABASE_URL is unset.
var ErrDatabaseURLRequired = errors.New("DATABASE_URL environment variable is required")

// Config holds all configuration for the Eclipse binaries.
type Config struct {
	DatabaseURL string
	TenantID    string

	RedisURL   string
	PreviewTTL time.Duration

	LMBackend  string
	EmbedModel string
	OpenAIKey  string
	GeminiKey  string

	HealthPort       string
	DeletedRetention time.Duration
	SweepInterval    time.Duration
	ReembedInterval  time.Duration

	LogLevel zapcore.Level
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	cfg := &Config{
		DatabaseURL: env("DATABASE_URL", ""),
		TenantID:    env("TENANT_ID", "local"),
		RedisURL:    env("REDIS_URL", ""),
		LMBackend:   llm.NormalizeBackend(env("LM_BACKEND", llm.BackendNone)),
		EmbedModel:  env("EMBED_MODEL", "auto"),
		OpenAIKey:   env("OPENAI_API_KEY", ""),
		GeminiKey:   env("GEMINI_API_KEY", ""),
		HealthPort:  env("HEALTH_PORT", ""),
	}

	var errs []error
	duration := func(key, fallback string) time.Duration {
		raw := env(key, fallback)
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("invalid %s: %q (want a positive duration like 15m)", key, raw))
			return 0
		}
		return d
	}
	cfg.PreviewTTL = duration("PREVIEW_TTL", "15m")
	cfg.DeletedRetention = duration("DELETED_RETENTION", "720h")
	cfg.SweepInterval = duration("SWEEP_INTERVAL", "1h")
	cfg.ReembedInterval = duration("REEMBED_INTERVAL", "10m")

	level, err := zapcore.ParseLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	// Validate LLM backend and API key
	switch cfg.LMBackend {
	case llm.BackendNone:
	case llm.BackendOpenAI:
		if cfg.OpenAIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY environment variable is required when LM_BACKEND=openai"))
		}
	case llm.BackendGemini:
		if cfg.GeminiKey == "" {
			errs = append(errs, fmt.Errorf("GEMINI_API_KEY environment variable is required when LM_BACKEND=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid LM_BACKEND: %q (must be 'none', 'openai' or 'gemini')", cfg.LMBackend))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireDatabase fails when no database is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURLRequired
	}
	return nil
}

// EmbeddingEnabled reports whether shortcut embeddings are configured.
func (c *Config) EmbeddingEnabled() bool {
	return c.LMBackend != llm.BackendNone
}

// APIKey returns the key for the configured embedding backend.
func (c *Config) APIKey() string {
	switch c.LMBackend {
	case llm.BackendOpenAI:
		return c.OpenAIKey
	case llm.BackendGemini:
		return c.GeminiKey
	default:
		return ""
	}
}

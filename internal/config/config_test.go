package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.TenantID)
	assert.Equal(t, "none", cfg.LMBackend)
	assert.Equal(t, 15*time.Minute, cfg.PreviewTTL)
	assert.Equal(t, 720*time.Hour, cfg.DeletedRetention)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.EmbeddingEnabled())
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrDatabaseURLRequired)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envFrom(map[string]string{
		"DATABASE_URL":      "postgres://localhost/eclipse",
		"TENANT_ID":         "acme",
		"REDIS_URL":         "redis://localhost:6379/0",
		"PREVIEW_TTL":       "5m",
		"LM_BACKEND":        " OpenAI ",
		"OPENAI_API_KEY":    "sk-test",
		"DELETED_RETENTION": "24h",
		"LOG_LEVEL":         "debug",
		"HEALTH_PORT":       "8081",
	}))
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, "acme", cfg.TenantID)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.PreviewTTL)
	assert.Equal(t, "openai", cfg.LMBackend)
	assert.True(t, cfg.EmbeddingEnabled())
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, 24*time.Hour, cfg.DeletedRetention)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "8081", cfg.HealthPort)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing openai key", map[string]string{"LM_BACKEND": "openai"}, "OPENAI_API_KEY"},
		{"missing gemini key", map[string]string{"LM_BACKEND": "gemini"}, "GEMINI_API_KEY"},
		{"unknown backend", map[string]string{"LM_BACKEND": "ollama"}, "invalid LM_BACKEND"},
		{"bad ttl", map[string]string{"PREVIEW_TTL": "soon"}, "invalid PREVIEW_TTL"},
		{"negative retention", map[string]string{"DELETED_RETENTION": "-1h"}, "invalid DELETED_RETENTION"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(envFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(zapcore.DebugLevel)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

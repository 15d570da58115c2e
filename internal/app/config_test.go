package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

var configKeys = []string{
	"LEARNSPHERE_CONFIG", "PORT", "NODE_ENV", "LOG_MODE", "JWT_SECRET_KEY",
	"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "DB_DRIVER", "SQLITE_PATH",
	"GEMINI_MODEL", "GEMINI_RATE_LIMIT_RPS", "STORAGE_MODE", "STORAGE_LOCAL_DIR",
	"REDIS_ADDR", "GENERATION_LEASE_TTL", "DEFAULT_CREDITS", "PROMPT_CHAR_BUDGET",
	"MAX_UPLOAD_MB", "CORS_ALLOWED_ORIGINS", "OTEL_ENABLED",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Production())
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 2.0, cfg.Gemini.RateRPS)
	assert.Equal(t, 4, cfg.Gemini.RateBurst)
	assert.Equal(t, storage.ModeLocal, cfg.Storage.Mode)
	assert.Equal(t, 10*time.Minute, cfg.LeaseTTL)
	assert.Equal(t, 10, cfg.DefaultCredits)
	assert.Equal(t, 60000, cfg.PromptBudget.CharBudget)
	assert.Equal(t, int64(25<<20), cfg.MaxUploadBytes)
	assert.Equal(t, defaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "learnsphere.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
node_env: production
default_credits: 3
max_upload_mb: 5
generation_lease_ttl: 90s
cors_allowed_origins:
  - https://app.example.com
  - https://admin.example.com
`), 0o600))
	t.Setenv("LEARNSPHERE_CONFIG", path)
	t.Setenv("DEFAULT_CREDITS", "7")
	t.Setenv("ACCESS_TOKEN_TTL", "60")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, 7, cfg.DefaultCredits)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 90*time.Second, cfg.LeaseTTL)
	assert.Equal(t, time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigCommaSeparatedOrigins(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com ,https://b.example.com,")
	t.Setenv("GENERATION_LEASE_TTL", "120")

	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Minute, cfg.LeaseTTL)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("LEARNSPHERE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "7000")

	cfg := LoadConfig(logger.Nop())
	assert.Equal(t, "7000", cfg.Port)
}

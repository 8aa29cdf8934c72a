package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("IDENTITY_URL", "https://project.supabase.co")
	t.Setenv("IDENTITY_KEY", "anon-key")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.PermissionCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.AppAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadConfigMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("IDENTITY_URL", "https://project.supabase.co")
	t.Setenv("IDENTITY_KEY", "anon-key")

	_, err := LoadConfig()
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, StoreModeRedis, cfg.Auth.StoreMode)
	assert.Equal(t, "lapor_session", cfg.Auth.CookieName)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/", cfg.Auth.SignInPath)
	assert.Equal(t, 2*time.Second, cfg.Auth.ExpiryGrace)
	assert.Equal(t, "http://localhost:5000", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_COOKIE_NAME", "sid")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("UPSTREAM_BASE_URL", "https://api.kampus.example/")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, StoreModeMemory, cfg.Auth.StoreMode)
	assert.Equal(t, "sid", cfg.Auth.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	// Sanitize trims the trailing slash so path joins stay clean.
	assert.Equal(t, "https://api.kampus.example", cfg.Upstream.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
}

func TestAppConfig_InvalidStoreMode(t *testing.T) {
	t.Setenv("SESSION_STORE", "postgres")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid StoreMode")
}

func TestStoreMode_UnmarshalText(t *testing.T) {
	var m StoreMode
	require.NoError(t, m.UnmarshalText([]byte("REDIS")))
	assert.Equal(t, StoreModeRedis, m)

	require.NoError(t, m.UnmarshalText([]byte("memory")))
	assert.Equal(t, StoreModeMemory, m)

	assert.Error(t, m.UnmarshalText([]byte("disk")))
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestAuthConfig_SanitizeGuardrails(t *testing.T) {
	a := AuthConfig{
		StoreMode:   StoreModeRedis,
		CookieName:  "",
		SessionTTL:  -time.Hour,
		SignInPath:  "login",
		ExpiryGrace: -time.Second,
	}
	a.Sanitize()

	assert.Equal(t, "lapor_session", a.CookieName)
	assert.Equal(t, 720*time.Hour, a.SessionTTL)
	assert.Equal(t, "/login", a.SignInPath)
	assert.Equal(t, time.Duration(0), a.ExpiryGrace)
}

func TestUpstreamConfig_Validate(t *testing.T) {
	u := UpstreamConfig{BaseURL: "   "}
	u.Sanitize()
	assert.Error(t, u.Validate())

	u = UpstreamConfig{BaseURL: "http://localhost:5000"}
	u.Sanitize()
	assert.NoError(t, u.Validate())
}

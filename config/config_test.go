package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"API_BASE_URL": "https://api.example.com/",
	}}))
	cfg.Sanitize()

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, AuthModeBackend, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 5*time.Minute, cfg.Auth.SessionRefreshInterval)
	assert.Equal(t, 10, cfg.Auth.SignInRateLimit)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.CookieSecure)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	assert.False(t, cfg.Observability.Metrics.IsEnabled())
	assert.False(t, cfg.IsDev)
}

func TestAppConfig_RequiresAPIBaseURL(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"API_BASE_URL":                  "https://api.example.com",
		"AUTH_MODE":                     "MOCK",
		"DEV_AUTH_ROLE":                 " Venue ",
		"SIGNIN_RATE_LIMIT":             "0",
		"ROLE_ALIASES":                  "band:artist;press:journalist",
		"REDIS_CLUSTER_NODES":           "a:6379, ,b:6379",
		"REDIS_USE_CLUSTER":             "true",
		"OBSERVABILITY_METRICS_ENABLED": "true",
	}}))
	cfg.Sanitize()

	assert.Equal(t, AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "venue", cfg.Auth.DevAuth.Role)
	assert.Equal(t, 0, cfg.Auth.SignInRateLimit)
	assert.Equal(t, map[string]string{"band": "artist", "press": "journalist"}, cfg.Auth.RoleAliases)
	assert.Equal(t, []string{"a:6379", "b:6379"}, cfg.Redis.ClusterNodes)
	assert.True(t, cfg.Redis.UseCluster)
	assert.True(t, cfg.Observability.Metrics.IsEnabled())
}

func TestAuthMode_RejectsUnknown(t *testing.T) {
	var m AuthMode
	assert.Error(t, m.UnmarshalText([]byte("oauth")))
	require.NoError(t, m.UnmarshalText([]byte("backend")))
	assert.Equal(t, AuthModeBackend, m)
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{HTTP: HTTPConfig{CookieSecure: true}}
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
	assert.False(t, cfg.HTTP.CookieSecure)
}

func TestHTTPConfig_SanitizeCookieDomain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"example.com", "example.com"},
		{".Portal.Example.com", "portal.example.com"},
		{"co.uk", ""},
		{"localhost", ""},
	}
	for _, tt := range tests {
		h := HTTPConfig{CookieDomain: tt.in, CompressionLevel: 6}
		h.Sanitize()
		assert.Equal(t, tt.want, h.CookieDomain, "input %q", tt.in)
	}
}

func TestHTTPConfig_ClampsCompression(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42, CompressionMinSize: -1}
	h.Sanitize()
	assert.Equal(t, 9, h.CompressionLevel)
	assert.Equal(t, 0, h.CompressionMinSize)

	h = HTTPConfig{CompressionLevel: 0}
	h.Sanitize()
	assert.Equal(t, 1, h.CompressionLevel)
}

func TestAuthConfig_Sanitize(t *testing.T) {
	a := AuthConfig{SessionLifetime: time.Second, SessionRefreshInterval: 48 * time.Hour, SignInRateLimit: -3}
	a.Sanitize()

	assert.Equal(t, 24*time.Hour, a.SessionLifetime)
	assert.Equal(t, 24*time.Hour, a.SessionRefreshInterval)
	assert.Equal(t, 0, a.SignInRateLimit)
	assert.Equal(t, 1, a.SignInBurst)
	assert.Equal(t, AuthModeBackend, a.Mode)
}

func TestAPIConfig_ClampsTimeout(t *testing.T) {
	a := APIConfig{BaseURL: " https://api.example.com// ", Timeout: time.Hour}
	a.Sanitize()
	assert.Equal(t, "https://api.example.com", a.BaseURL)
	assert.Equal(t, 2*time.Minute, a.Timeout)
}

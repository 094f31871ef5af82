package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeBackend signs users in against the marketplace API.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// DevAuthConfig controls the mock identity used when AUTH_MODE=mock.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"`
	Username string `env:"USERNAME" envDefault:"dev"`
	Role     string `env:"ROLE"     envDefault:"artist"`
	Plan     string `env:"PLAN"     envDefault:"free"`
}

// AuthConfig groups sign-in and session configuration.
type AuthConfig struct {
	// Mode determines which authentication backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// SessionLifetime is the absolute lifetime of a portal session.
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`

	// SessionRefreshInterval is how stale the cached account may get before /api/auth/me is called again.
	SessionRefreshInterval time.Duration `env:"SESSION_REFRESH_INTERVAL" envDefault:"5m"`

	// SignInRateLimit is POST /signin attempts per minute per client IP. Zero disables throttling.
	SignInRateLimit int `env:"SIGNIN_RATE_LIMIT" envDefault:"10"`
	SignInBurst     int `env:"SIGNIN_BURST"      envDefault:"5"`

	// RoleAliases maps extra backend user types onto roles, e.g. "band:artist;press:journalist".
	RoleAliases map[string]string `env:"ROLE_ALIASES" envSeparator:";" envKeyValSeparator:":"`

	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize clamps session timings and throttle settings.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeBackend
	}
	if a.SessionLifetime < time.Minute {
		a.SessionLifetime = 24 * time.Hour
	}
	if a.SessionRefreshInterval > a.SessionLifetime {
		a.SessionRefreshInterval = a.SessionLifetime
	}
	if a.SignInRateLimit < 0 {
		a.SignInRateLimit = 0
	}
	if a.SignInBurst < 1 {
		a.SignInBurst = 1
	}
	a.DevAuth.Role = strings.ToLower(strings.TrimSpace(a.DevAuth.Role))
	a.DevAuth.Plan = strings.ToLower(strings.TrimSpace(a.DevAuth.Plan))
}

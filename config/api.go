package config

import (
	"strings"
	"time"
)

const (
	defaultAPITimeout = 15 * time.Second
	maxAPITimeout     = 2 * time.Minute
)

// APIConfig configures the marketplace REST API client.
type APIConfig struct {
	// BaseURL is the API origin, e.g. "https://api.example.com". Paths such as /api/auth/login are appended.
	BaseURL string `env:"API_BASE_URL,required"`

	// Timeout bounds every backend call.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	UserAgent string `env:"API_USER_AGENT" envDefault:"stagepass-portal"`
}

// Sanitize trims the base URL and clamps the timeout.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = defaultAPITimeout
	}
	if a.Timeout > maxAPITimeout {
		a.Timeout = maxAPITimeout
	}
	if strings.TrimSpace(a.UserAgent) == "" {
		a.UserAgent = "stagepass-portal"
	}
}

package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: marketplace API client
//   - auth.go: sign-in and session configuration
//   - redis.go: session store and in-flight lock
//   - http.go: HTTP server configuration
//   - observability.go: metrics
type AppConfig struct {
	// IsDev controls development mode behavior.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	API   APIConfig
	Auth  AuthConfig
	Redis RedisConfig `envPrefix:"REDIS_"`
	HTTP  HTTPConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Redis.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	// Plain-HTTP local development cannot carry Secure cookies.
	if c.IsDev {
		c.HTTP.CookieSecure = false
	}
}

// detectDevMode checks NODE_ENV as a fallback for DEV (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

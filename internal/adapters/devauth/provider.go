package devauth

// Package devauth provides a config-driven BackendAuth for local development.
// It lets the portal run without the marketplace API.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/stagepass/portal/internal/apierror"
	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/ports"
)

// Config controls the dev provider. Role is required; the rest default.
type Config struct {
	UserID   string
	Username string
	Role     string
	Plan     string
}

// Provider implements ports.BackendAuth for local development.
// Login accepts any email with a non-empty password and signs in as the configured account.
type Provider struct {
	user ports.BackendUser

	mu     sync.RWMutex
	tokens map[string]string // token -> email
}

var _ ports.BackendAuth = (*Provider)(nil)

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	role, ok := domainauth.ParseRole(cfg.Role)
	if !ok {
		return nil, fmt.Errorf("dev auth: unknown role %q", cfg.Role)
	}
	id := cfg.UserID
	if id == "" {
		id = "dev-" + string(role)
	}
	name := cfg.Username
	if name == "" {
		name = "dev." + string(role)
	}
	plan := strings.ToLower(strings.TrimSpace(cfg.Plan))
	if plan == "" {
		plan = string(domainauth.PlanFree)
	}
	return &Provider{
		user: ports.BackendUser{
			ID:               id,
			Username:         name,
			UserType:         string(role),
			SubscriptionPlan: plan,
		},
		tokens: make(map[string]string),
	}, nil
}

// Login issues a fresh random token for any non-empty password.
func (p *Provider) Login(_ context.Context, in ports.Credentials) (ports.LoginResult, error) {
	if strings.TrimSpace(in.Password) == "" {
		return ports.LoginResult{}, &apierror.Error{
			Status: http.StatusBadRequest,
			Fields: map[string]string{"password": "Password is required."},
		}
	}
	token, err := randomString(32)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("generate token: %w", err)
	}

	p.mu.Lock()
	p.tokens[token] = in.Email
	p.mu.Unlock()

	u := p.user
	u.Email = in.Email
	return ports.LoginResult{Token: token, User: u}, nil
}

// Me returns the account for a token issued by Login.
func (p *Provider) Me(_ context.Context, token string) (ports.BackendUser, error) {
	p.mu.RLock()
	email, ok := p.tokens[token]
	p.mu.RUnlock()
	if !ok {
		return ports.BackendUser{}, &apierror.Error{Status: http.StatusUnauthorized, Message: "Invalid token"}
	}
	u := p.user
	u.Email = email
	return u, nil
}

var errShortRead = errors.New("short random read")

func randomString(n int) (string, error) {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		return "", errShortRead
	}
	return s[:n], nil
}

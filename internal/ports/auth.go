package ports

// Package ports defines interfaces (hexagonal ports) for the portal's collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Credentials carries a sign-in attempt.
type Credentials struct {
	Email    string
	Password string
}

// BackendUser is the account record as the marketplace API reports it.
// UserType and Plan are raw strings; RoleMapper turns them into domain values.
type BackendUser struct {
	ID               string
	Username         string
	Email            string
	UserType         string
	SubscriptionPlan string
}

// LoginResult is a successful backend sign-in.
type LoginResult struct {
	Token string
	User  BackendUser
}

// BackendAuth authenticates against the marketplace API.
type BackendAuth interface {
	// Login exchanges credentials for a bearer token and the account record.
	Login(ctx context.Context, in Credentials) (LoginResult, error)

	// Me returns the account behind token. A rejected token yields apierror.ErrUnauthorized.
	Me(ctx context.Context, token string) (BackendUser, error)
}

// ErrSessionNotFound is returned by SessionStore.Get for unknown or expired ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps the backend's user type onto a portal role.
type RoleMapper interface {
	Map(userType string) (domainauth.Role, bool)
}

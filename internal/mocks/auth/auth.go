package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.BackendAuth  = (*MockBackendAuth)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleMapper   = (*StaticRoleMapper)(nil)
)

// MockBackendAuth simulates the marketplace auth endpoints.
// Unset funcs fall back to accepting any credentials for DefaultUser.
type MockBackendAuth struct {
	LoginFunc func(ctx context.Context, in ports.Credentials) (ports.LoginResult, error)
	MeFunc    func(ctx context.Context, token string) (ports.BackendUser, error)

	DefaultUser  ports.BackendUser
	DefaultToken string

	mu         sync.Mutex
	LoginCalls int
	MeCalls    int
}

// NewMockBackendAuth creates a MockBackendAuth with an artist account.
func NewMockBackendAuth() *MockBackendAuth {
	return &MockBackendAuth{
		DefaultToken: "token-1",
		DefaultUser: ports.BackendUser{
			ID:               "user-1",
			Username:         "mock.artist",
			Email:            "artist@example.com",
			UserType:         "artist",
			SubscriptionPlan: "free",
		},
	}
}

func (m *MockBackendAuth) Login(ctx context.Context, in ports.Credentials) (ports.LoginResult, error) {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()

	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	return ports.LoginResult{Token: m.DefaultToken, User: m.DefaultUser}, nil
}

func (m *MockBackendAuth) Me(ctx context.Context, token string) (ports.BackendUser, error) {
	m.mu.Lock()
	m.MeCalls++
	m.mu.Unlock()

	if m.MeFunc != nil {
		return m.MeFunc(ctx, token)
	}
	return m.DefaultUser, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when a session is not present.
var ErrNotFound = ports.ErrSessionNotFound

// StaticRoleMapper parses user types directly into roles.
type StaticRoleMapper struct{}

func (StaticRoleMapper) Map(userType string) (domainauth.Role, bool) {
	return domainauth.ParseRole(userType)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/stagepass/portal/internal/apierror"
	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/billing"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/validation"
)

const (
	defaultSessionLifetime = 24 * time.Hour
	defaultRefreshInterval = 5 * time.Minute
	minPasswordLength      = 6
)

// ErrSessionExpired is returned by GetSession for sessions past their expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthDeps are the collaborators AuthService needs. All are required.
type AuthDeps struct {
	Backend  ports.BackendAuth
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
}

// AuthConfig tunes session lifetime and refresh.
type AuthConfig struct {
	// Lifetime is the absolute session TTL. Zero means 24h.
	Lifetime time.Duration
	// RefreshInterval is how stale the cached user may get before /api/auth/me is re-fetched.
	// Zero means 5m; negative disables refreshing.
	RefreshInterval time.Duration
	// Now overrides the clock for tests.
	Now func() time.Time
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Deps   AuthDeps
	Config AuthConfig
	Logger *slog.Logger
}

// AuthService signs users in against the backend and resolves the portal session on every request.
type AuthService struct {
	backend  ports.BackendAuth
	sessions ports.SessionStore
	roles    ports.RoleMapper

	lifetime time.Duration
	refresh  time.Duration
	now      func() time.Time
	logger   *slog.Logger

	refreshes singleflight.Group
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Deps.Backend == nil {
		panic("BackendAuth is required")
	}
	if opts.Deps.Sessions == nil {
		panic("SessionStore is required")
	}
	if opts.Deps.Roles == nil {
		panic("RoleMapper is required")
	}

	cfg := opts.Config
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultSessionLifetime
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		backend:  opts.Deps.Backend,
		sessions: opts.Deps.Sessions,
		roles:    opts.Deps.Roles,
		lifetime: cfg.Lifetime,
		refresh:  cfg.RefreshInterval,
		now:      cfg.Now,
		logger:   logger,
	}
}

// SignInInput is a submitted sign-in form.
type SignInInput struct {
	Email    string
	Password string
}

// ValidateSignIn runs the local form checks. An empty map means the input may be sent.
func ValidateSignIn(in SignInInput) map[string]string {
	return validation.New().
		Validate("email", in.Email, validation.Email("Email")).
		Validate("password", in.Password, validation.MinLength("Password", minPasswordLength)).
		Errors()
}

// SignIn validates locally, authenticates against the backend and persists a new session.
// Local failures return a validation *AppError without any network call.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*domainauth.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if fields := ValidateSignIn(in); len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	res, err := s.backend.Login(ctx, ports.Credentials{Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, fmt.Errorf("backend login: %w", err)
	}

	user, err := s.toUser(res.User)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := domainauth.Session{
		ID:          uuid.NewString(),
		User:        user,
		Token:       res.Token,
		CreatedAt:   now,
		RefreshedAt: now,
		ExpiresAt:   now.Add(s.lifetime),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID, "role", user.UserType)
	return &sess, nil
}

func (s *AuthService) toUser(u ports.BackendUser) (domainauth.User, error) {
	role, ok := s.roles.Map(u.UserType)
	if !ok {
		return domainauth.User{}, apperrors.Forbidden(
			"This account type cannot use the dashboard.",
			fmt.Errorf("unknown user type %q", u.UserType),
		)
	}
	return domainauth.User{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		UserType:         role,
		SubscriptionPlan: billing.ParsePlan(u.SubscriptionPlan),
	}, nil
}

// GetSession retrieves a session by ID, deleting it if it has expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if sess.Expired(s.now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Resolve turns a session cookie value into what pages observe.
//
// Missing or expired sessions and a backend 401 yield a signed-out state.
// A store or transport failure yields Loading, since the session may still be valid.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) domainauth.SessionState {
	if sessionID == "" {
		return domainauth.SignedOut()
	}

	sess, err := s.GetSession(ctx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ports.ErrSessionNotFound):
		return domainauth.SignedOut()
	default:
		s.logger.WarnContext(ctx, "session lookup failed", "error", err)
		return domainauth.SessionState{Loading: true}
	}

	if sess.NeedsRefresh(s.now(), s.refresh) {
		refreshed, state, done := s.refreshUser(ctx, *sess)
		if done {
			return state
		}
		sess = &refreshed
	}

	user := sess.User
	return domainauth.SessionState{User: &user, Token: sess.Token}
}

// refreshUser re-fetches the account. done=true means state is final and the caller must return it.
func (s *AuthService) refreshUser(
	ctx context.Context,
	sess domainauth.Session,
) (domainauth.Session, domainauth.SessionState, bool) {
	v, err, _ := s.refreshes.Do(sess.ID, func() (any, error) {
		bu, err := s.backend.Me(ctx, sess.Token)
		if err != nil {
			return nil, err
		}
		user, err := s.toUser(bu)
		if err != nil {
			return nil, err
		}
		sess.User = user
		sess.RefreshedAt = s.now()
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			s.logger.WarnContext(ctx, "persist refreshed session", "error", saveErr)
		}
		return sess, nil
	})

	switch {
	case err == nil:
		return v.(domainauth.Session), domainauth.SessionState{}, false
	case apierror.IsUnauthorized(err), apperrors.IsForbidden(err):
		s.logger.InfoContext(ctx, "session revoked upstream", "user_id", sess.User.ID, "error", err)
		if logoutErr := s.Logout(ctx, sess.ID); logoutErr != nil {
			s.logger.WarnContext(ctx, "logout after revoke", "error", logoutErr)
		}
		return sess, domainauth.SignedOut(), true
	default:
		s.logger.WarnContext(ctx, "refresh user failed", "user_id", sess.User.ID, "error", err)
		return sess, domainauth.SessionState{Loading: true}, true
	}
}

// Logout removes a session. Empty IDs are a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/menu"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/http/ui/pages"
	"github.com/stagepass/portal/internal/service"
)

const tooManyAttemptsMessage = "Too many sign-in attempts. Please wait a minute and try again."

// AuthServiceInterface defines the auth operations the sign-in pages need.
type AuthServiceInterface interface {
	SignIn(ctx context.Context, in service.SignInInput) (*domainauth.Session, error)
	Resolve(ctx context.Context, sessionID string) domainauth.SessionState
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for sign-in and sign-out.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies Cookies
	// Limiter throttles POST /signin per client IP; nil disables it.
	Limiter *SignInLimiter
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SignInPage renders the sign-in form. Signed-in users go straight to their dashboard.
// GET /signin?redirect_uri=<optional>.
func (h *AuthHandlers) SignInPage(w http.ResponseWriter, r *http.Request) {
	if state, _ := SessionStateFromContext(r.Context()); state.Authenticated() {
		redirect(w, r, menu.DashboardPath(state.User.UserType))
		return
	}
	h.writeSignIn(w, r, http.StatusOK, pages.SignInView{
		RedirectURI: r.URL.Query().Get("redirect_uri"),
	})
}

// SignIn validates the form, authenticates against the backend and starts a session.
// POST /signin.
//
// Local validation failures never reach the backend. Backend field errors are shown
// under their fields, and the toast carries the backend's single summary line.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := pages.SignInView{
		Email:       r.PostFormValue("email"),
		RedirectURI: r.PostFormValue("redirect_uri"),
	}

	if !h.Limiter.Allow(r) {
		view.Error = tooManyAttemptsMessage
		triggerToast(w, tooManyAttemptsMessage, toastError)
		h.writeSignIn(w, r, http.StatusTooManyRequests, view)
		return
	}

	sess, err := h.Svc.SignIn(r.Context(), service.SignInInput{
		Email:    view.Email,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		view.Fields = fieldErrors(err)
		msg := ErrorMessage(err)
		if len(view.Fields) == 0 {
			view.Error = msg
		}
		if !apperrors.IsValidation(err) && !isClientError(err) {
			h.logger().WarnContext(r.Context(), "sign-in failed", "error", err)
		}
		triggerToast(w, msg, toastError)
		h.writeSignIn(w, r, formStatus(r, ErrorStatus(err)), view)
		return
	}

	h.Cookies.SetSession(w, r, *sess)
	dest := menu.DashboardPath(sess.User.UserType)
	if view.RedirectURI != "" {
		if safe := safeRedirectPath(view.RedirectURI); safe != "/" {
			dest = safe
		}
	}
	redirect(w, r, dest)
}

func isClientError(err error) bool {
	status := ErrorStatus(err)
	return status >= 400 && status < 500
}

func (h *AuthHandlers) writeSignIn(w http.ResponseWriter, r *http.Request, status int, view pages.SignInView) {
	view.CSRFToken = GetCSRFToken(r)
	node := pages.SignInPage(view)
	if IsHTMX(r) {
		node = pages.SignInForm(view)
	}
	if err := writeNode(w, status, node); err != nil {
		h.logger().WarnContext(r.Context(), "render sign-in failed", "error", err)
	}
}

// Logout ends the session server-side, clears the cookie and returns to /signin.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); id != "" {
		if err := h.Svc.Logout(r.Context(), id); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.Cookies.Clear(w, r, sessionCookieName)
	redirect(w, r, "/signin")
}

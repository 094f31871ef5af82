package httpx

import (
	"context"
	"net/http"
	"net/url"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/menu"
	"github.com/stagepass/portal/internal/http/ui/shell"
)

// SessionResolver turns a session cookie value into the state pages observe.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) domainauth.SessionState
}

// ResolveSession loads the visitor's session state into the request context.
// A cookie that no longer names a live session is cleared.
func ResolveSession(resolver SessionResolver, cookies Cookies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := domainauth.SignedOut()
			if id := sessionID(r); id != "" {
				state = resolver.Resolve(r.Context(), id)
				if !state.Authenticated() && !state.Loading {
					cookies.Clear(w, r, sessionCookieName)
				}
			}
			next.ServeHTTP(w, r.WithContext(SetSessionStateInContext(r.Context(), state)))
		})
	}
}

// RoleShell gates a role's dashboard subtree. It must run after ResolveSession.
//
// Unresolved sessions get the loading frame, signed-out visitors go to /signin and
// users of another role are sent to /dashboard; nothing of the page renders in those cases.
func RoleShell(role domainauth.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, _ := SessionStateFromContext(r.Context())
			switch shell.Decide(state, role) {
			case shell.DecisionRender:
				next.ServeHTTP(w, r)
			case shell.DecisionMismatch:
				redirect(w, r, menu.DashboardBase)
			case shell.DecisionLoading:
				renderLoading(w, r)
			default:
				redirectToLogin(w, r)
			}
		})
	}
}

// renderLoading answers while the session's user cannot be resolved yet.
// Only reads poll; a mutation is refused so it is never applied for an unknown user.
func renderLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		triggerToast(w, "We're still loading your session. Please try again.", toastError)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	path := safeRedirectPath(r.URL.RequestURI())
	if IsHTMX(r) {
		_ = writeNode(w, http.StatusOK, shell.LoadingFragment(path))
		return
	}
	_ = writeNode(w, http.StatusOK, shell.Loading(path))
}

// redirectToLogin sends the visitor to /signin, remembering where they were going.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	q.Set("redirect_uri", redirectPathForRequest(r))
	redirect(w, r, "/signin?"+q.Encode())
}

// redirectPathForRequest prefers the page the user is on for htmx requests.
func redirectPathForRequest(r *http.Request) string {
	if IsHTMX(r) {
		if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
			return current
		}
	}
	if r.Method != http.MethodGet {
		return "/dashboard"
	}
	return safeRedirectPath(r.URL.RequestURI())
}

func safeRedirectFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	// Reject scheme-relative or host-only references.
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	if u.IsAbs() {
		return safeRedirectPath(u.RequestURI())
	}
	return safeRedirectPath(raw)
}

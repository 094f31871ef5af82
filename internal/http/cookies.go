package httpx

import (
	"net/http"
	"time"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

const sessionCookieName = "session_id"

// Cookies sets and clears the portal's session cookie.
type Cookies struct {
	Domain string
	// Secure forces the Secure attribute even on plain-HTTP requests.
	Secure bool
}

func (c Cookies) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || isForwardedHTTPS(r)
}

// SetSession writes the opaque session id cookie; it expires with the session.
func (c Cookies) SetSession(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Clear expires a cookie, mirroring the attributes it was set with.
func (c Cookies) Clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.secure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

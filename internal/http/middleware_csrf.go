package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-Csrf-Token"
	// csrfFieldName is the hidden form field written by shell.CSRFField.
	csrfFieldName = "csrf_token"
	csrfTokenBytes = 32
	csrfMaxAge     = 12 * 60 * 60
	// defaultCSRFFormBytes leaves room for the largest upload plus its form overhead.
	defaultCSRFFormBytes = maxUploadBytes + 1<<20
	csrfFormMemory       = 1 << 20
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	CookieDomain string
	// Secure forces the Secure attribute on the token cookie.
	Secure bool
	// MaxFormBytes caps a form body read to find the token field. Zero means defaultCSRFFormBytes.
	MaxFormBytes int64
}

func (c CSRFConfig) maxFormBytes() int64 {
	if c.MaxFormBytes > 0 {
		return c.MaxFormBytes
	}
	return defaultCSRFFormBytes
}

// CSRFProtection guards state-changing requests with a double-submit cookie.
// The token travels back in the X-Csrf-Token header (htmx sets it from the body's
// hx-headers) or in the csrf_token form field for plain form posts.
func CSRFProtection(cfg CSRFConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(csrfCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:   csrfCookieName,
					Value:  token,
					Path:   "/",
					Domain: cfg.CookieDomain,
					// htmx never reads it; the token reaches pages through the context.
					HttpOnly: true,
					Secure:   cfg.Secure || r.TLS != nil || isForwardedHTTPS(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   csrfMaxAge,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))
			if !safeMethod(r.Method) {
				ok, err := csrfTokenMatches(w, r, token, cfg.maxFormBytes())
				var tooLarge *http.MaxBytesError
				switch {
				case errors.As(err, &tooLarge):
					http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
					return
				case err != nil:
					http.Error(w, "invalid form body", http.StatusBadRequest)
					return
				case !ok:
					http.Error(w, "CSRF token validation failed", http.StatusForbidden)
					return
				}
			}
			// The server only removes multipart temp files of the request it created, not this copy.
			defer func() {
				if r.MultipartForm != nil {
					_ = r.MultipartForm.RemoveAll()
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// isForwardedHTTPS reports whether a proxy terminated TLS for this request.
func isForwardedHTTPS(r *http.Request) bool {
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// csrfTokenMatches compares the submitted token with the cookie in constant time.
// A form body is only read when the header is absent, and never past limit bytes.
func csrfTokenMatches(w http.ResponseWriter, r *http.Request, want string, limit int64) (bool, error) {
	if want == "" {
		return false, nil
	}
	got := r.Header.Get(csrfHeaderName)
	if got == "" {
		var err error
		if got, err = formToken(w, r, limit); err != nil {
			return false, err
		}
	}
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1, nil
}

func formToken(w http.ResponseWriter, r *http.Request, limit int64) (string, error) {
	ct := r.Header.Get("Content-Type")
	isMultipart := strings.HasPrefix(ct, "multipart/form-data")
	if !isMultipart && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		return "", nil
	}
	if r.ContentLength > limit {
		return "", &http.MaxBytesError{Limit: limit}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	var err error
	if isMultipart {
		err = r.ParseMultipartForm(csrfFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return "", fmt.Errorf("parse form for csrf token: %w", err)
	}
	return r.PostFormValue(csrfFieldName), nil
}

type csrfTokenKey struct{}

// GetCSRFToken returns the request's CSRF token for forms and hx-headers.
func GetCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenKey{}).(string)
	return token
}

package httpx

import (
	"net/http"
	"net/url"
	"strings"

	g "maragu.dev/gomponents"
)

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}

// writeNode renders n as an HTML response with status (0 means 200).
func writeNode(w http.ResponseWriter, status int, n g.Node) error {
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if n == nil {
		return nil
	}
	return n.Render(w)
}

// formStatus keeps htmx form re-renders at 200 so the swap happens; full pages get status.
func formStatus(r *http.Request, status int) int {
	if IsHTMX(r) {
		return http.StatusOK
	}
	return status
}

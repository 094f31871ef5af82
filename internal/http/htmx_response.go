package httpx

import (
	"net/http"
)

// HTMXResponse builds htmx response headers fluently.
type HTMXResponse struct {
	w http.ResponseWriter
}

// HTMX wraps w for fluent header building.
func HTMX(w http.ResponseWriter) *HTMXResponse {
	return &HTMXResponse{w: w}
}

// Trigger adds a client-side event. Chainable.
func (h *HTMXResponse) Trigger(event string, payload any) *HTMXResponse {
	SetHXTrigger(h.w, event, payload)
	return h
}

// Redirect sends Hx-Redirect with 204 No Content. Write nothing after it.
func (h *HTMXResponse) Redirect(url string) {
	SetHXRedirect(h.w, url)
	h.w.WriteHeader(http.StatusNoContent)
}

// redirect navigates the browser to url: Hx-Redirect for htmx, 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(url)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

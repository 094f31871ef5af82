// Package shell renders the role dashboard frame: sidebar, mobile slide-over and loading frame.
package shell

import (
	"net/http"
	"strconv"
	"strings"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Decision is what the shell does with a request once the session is resolved.
type Decision int

const (
	// DecisionLoading renders a neutral frame that polls until the user resolves.
	DecisionLoading Decision = iota
	// DecisionSignIn sends the visitor to the sign-in page.
	DecisionSignIn
	// DecisionMismatch sends a user of another role back to /dashboard.
	DecisionMismatch
	// DecisionRender renders the shell around the page content.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionSignIn:
		return "signin"
	case DecisionMismatch:
		return "mismatch"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Decide maps a session state onto the shell's action for a dashboard owned by role.
// Navigation is never rendered before the user is known.
func Decide(state domainauth.SessionState, role domainauth.Role) Decision {
	switch {
	case state.User != nil && state.User.UserType == role:
		return DecisionRender
	case state.User != nil:
		return DecisionMismatch
	case state.Loading:
		return DecisionLoading
	default:
		return DecisionSignIn
	}
}

// IsActive reports whether a menu entry is highlighted for the current path.
// The root entry only matches exactly; other entries also match their sub-paths.
func IsActive(href, current, root string) bool {
	if href == "" || current == "" {
		return false
	}
	if href == current {
		return true
	}
	if href == root || href == root+"/" {
		return current == root || current == root+"/"
	}
	return strings.HasPrefix(current, href+"/") || strings.HasPrefix(current, href+"?")
}

// MobileBreakpointPx is the viewport width below which the slide-over replaces the sidebar.
const MobileBreakpointPx = 768

// IsMobileRequest guesses the initial layout from client hints.
// Browsers without hints start on the desktop layout and the resize script corrects it.
func IsMobileRequest(h http.Header) bool {
	if strings.TrimSpace(h.Get("Sec-Ch-Ua-Mobile")) == "?1" {
		return true
	}
	if w, err := strconv.Atoi(strings.TrimSpace(h.Get("Sec-Ch-Viewport-Width"))); err == nil && w > 0 {
		return w < MobileBreakpointPx
	}
	return false
}

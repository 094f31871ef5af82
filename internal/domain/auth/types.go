// Package auth contains domain-level types for portal users and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// Role is the user type reported by the marketplace API.
// Each role owns exactly one dashboard subtree (/dashboard/<role>).
type Role string

const (
	RoleArtist       Role = "artist"
	RoleVenue        Role = "venue"
	RolePhotographer Role = "photographer"
	RoleStudio       Role = "studio"
	RoleJournalist   Role = "journalist"
	RoleAdmin        Role = "admin"
)

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleArtist, RoleVenue, RolePhotographer, RoleStudio, RoleJournalist, RoleAdmin}
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Plan is the subscription tier carried on the user record.
// The billing package owns the authoritative plan semantics; this is the cached copy.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User is the identity returned by the backend for a signed-in account.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	UserType         Role   `json:"user_type"`
	SubscriptionPlan Plan   `json:"subscription_plan"`
}

// DisplayName prefers the username and falls back to the email address.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	return u.Email
}

// Session is the server-side record we persist for a signed-in user.
// ID is the opaque value held in the browser cookie; Token never leaves the server.
type Session struct {
	ID          string    `json:"id"`
	User        User      `json:"user"`
	Token       string    `json:"token"`
	CreatedAt   time.Time `json:"created_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its absolute expiry.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// NeedsRefresh reports whether the cached user is older than interval.
// A non-positive interval disables refreshing.
func (s Session) NeedsRefresh(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	return now.Sub(s.RefreshedAt) >= interval
}

// SessionState is what page handlers observe about the current visitor.
//
//   - User != nil: signed in.
//   - User == nil && Loading: a session exists but the user could not be resolved yet.
//   - User == nil && !Loading: signed out.
type SessionState struct {
	User    *User
	Token   string
	Loading bool
}

// Authenticated reports whether the state carries a resolved user.
func (s SessionState) Authenticated() bool { return s.User != nil }

// SignedOut is the zero state for visitors without a usable session.
func SignedOut() SessionState { return SessionState{} }

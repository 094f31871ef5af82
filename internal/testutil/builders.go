package testutil

import (
	"time"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/billing"
)

// SessionBuilder provides a fluent interface for building sessions in tests.
type SessionBuilder struct {
	sess domainauth.Session
}

// NewSession creates a SessionBuilder for a free artist with a one hour lifetime.
func NewSession() *SessionBuilder {
	now := time.Now()
	return &SessionBuilder{
		sess: domainauth.Session{
			ID: "session-1",
			User: domainauth.User{
				ID:               "user-1",
				Username:         "test.artist",
				Email:            "artist@example.com",
				UserType:         domainauth.RoleArtist,
				SubscriptionPlan: domainauth.PlanFree,
			},
			Token:       "token-1",
			CreatedAt:   now,
			RefreshedAt: now,
			ExpiresAt:   now.Add(time.Hour),
		},
	}
}

// WithID sets the session ID.
func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.sess.ID = id
	return b
}

// WithUserID sets the signed-in user's ID.
func (b *SessionBuilder) WithUserID(id string) *SessionBuilder {
	b.sess.User.ID = id
	return b
}

// WithRole sets the user's role.
func (b *SessionBuilder) WithRole(role domainauth.Role) *SessionBuilder {
	b.sess.User.UserType = role
	return b
}

// WithPlan sets the cached subscription plan.
func (b *SessionBuilder) WithPlan(plan domainauth.Plan) *SessionBuilder {
	b.sess.User.SubscriptionPlan = plan
	return b
}

// WithToken sets the backend bearer token.
func (b *SessionBuilder) WithToken(token string) *SessionBuilder {
	b.sess.Token = token
	return b
}

// WithRefreshedAt sets when the user record was last refreshed.
func (b *SessionBuilder) WithRefreshedAt(t time.Time) *SessionBuilder {
	b.sess.RefreshedAt = t
	return b
}

// WithExpiresAt sets the absolute expiry.
func (b *SessionBuilder) WithExpiresAt(t time.Time) *SessionBuilder {
	b.sess.ExpiresAt = t
	return b
}

// Build returns the session.
func (b *SessionBuilder) Build() domainauth.Session {
	return b.sess
}

// State returns the signed-in SessionState for the built session.
func (b *SessionBuilder) State() domainauth.SessionState {
	u := b.sess.User
	return domainauth.SessionState{User: &u, Token: b.sess.Token}
}

// StatusBuilder builds billing statuses for tests.
type StatusBuilder struct {
	st billing.BillingStatus
}

// NewStatus starts from a free plan with no subscription.
func NewStatus() *StatusBuilder {
	return &StatusBuilder{st: billing.BillingStatus{Plan: billing.PlanFree, Status: billing.StatusNone}}
}

// Pro marks the status as an active pro subscription renewing in 30 days.
func (b *StatusBuilder) Pro() *StatusBuilder {
	end := TestTime().Add(30 * 24 * time.Hour)
	b.st.Plan = billing.PlanPro
	b.st.Status = billing.StatusActive
	b.st.CurrentPeriodEnd = &end
	return b
}

// Canceling marks the subscription as set to cancel at period end.
func (b *StatusBuilder) Canceling() *StatusBuilder {
	b.st.CancelAtPeriodEnd = true
	return b
}

// WithStatus overrides the subscription status.
func (b *StatusBuilder) WithStatus(s billing.Status) *StatusBuilder {
	b.st.Status = s
	return b
}

// Build returns the status.
func (b *StatusBuilder) Build() billing.BillingStatus {
	return b.st
}

// Package billing models subscription state and the per-role capability table.
package billing

import (
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Plan aliases the plan carried on the user record so both views compare directly.
type Plan = domainauth.Plan

const (
	PlanFree = domainauth.PlanFree
	PlanPro  = domainauth.PlanPro
)

// ParsePlan maps free-form plan names onto Plan. Anything unrecognized is free.
func ParsePlan(s string) Plan {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pro", "premium", "paid":
		return PlanPro
	default:
		return PlanFree
	}
}

// Status is the portal's view of a subscription lifecycle.
type Status string

const (
	StatusNone     Status = "none"
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
)

// NormalizeStatus folds provider subscription statuses into the four portal states.
func NormalizeStatus(raw string) Status {
	switch stripe.SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case stripe.SubscriptionStatusTrialing:
		return StatusTrialing
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusPastDue:
		return StatusActive
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return StatusCanceled
	default:
		return StatusNone
	}
}

// BillingStatus is fetched fresh on every billing view and after every mutation.
type BillingStatus struct {
	Plan              Plan       `json:"plan"`
	Status            Status     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
	TrialEndsAt       *time.Time `json:"trialEndsAt,omitempty"`
}

// DisplayActions describes which billing controls a view should offer.
type DisplayActions struct {
	ShowUpgrade bool
	ShowCancel  bool
	ShowResume  bool
	ShowPortal  bool
}

// Live reports whether the subscription is currently entitling the user.
func (b BillingStatus) Live() bool {
	return b.Status == StatusActive || b.Status == StatusTrialing
}

// Actions derives the visible controls. A pending cancellation always offers
// Resume and never Cancel.
func (b BillingStatus) Actions() DisplayActions {
	return DisplayActions{
		ShowUpgrade: b.Plan != PlanPro || b.Status == StatusNone || b.Status == StatusCanceled,
		ShowCancel:  b.Live() && !b.CancelAtPeriodEnd,
		ShowResume:  b.CancelAtPeriodEnd,
		ShowPortal:  b.Status != StatusNone,
	}
}

// EffectivePlan is the plan the capability table should use. A canceled or
// missing subscription downgrades to free even when the plan field lags.
func (b BillingStatus) EffectivePlan() Plan {
	if b.Plan == PlanPro && b.Live() {
		return PlanPro
	}
	return PlanFree
}

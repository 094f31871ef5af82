package restapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/ports"
)

var _ ports.BillingGateway = (*Client)(nil)

const (
	pathSubscriptionStatus = "/api/subscription/status"
	pathCheckoutPro        = "/api/subscription/checkout/pro"
	pathPortal             = "/api/stripe/connect/portal"
	pathCancel             = "/api/stripe/connect/cancel"
	pathResume             = "/api/stripe/connect/resume"
)

// Status calls GET /api/subscription/status.
func (c *Client) Status(ctx context.Context, token string) (billing.BillingStatus, error) {
	doc, err := c.doJSON(ctx, call{method: http.MethodGet, path: pathSubscriptionStatus, endpoint: pathSubscriptionStatus, token: token})
	if err != nil {
		return billing.BillingStatus{}, err
	}
	obj, ok := extractObject(doc, "subscription")
	if !ok {
		return billing.BillingStatus{Plan: billing.PlanFree, Status: billing.StatusNone}, nil
	}
	return billing.BillingStatus{
		Plan:              billing.ParsePlan(str(obj, "plan || subscriptionPlan || tier")),
		Status:            billing.NormalizeStatus(str(obj, "status || subscriptionStatus")),
		CurrentPeriodEnd:  timestamp(obj, "currentPeriodEnd || current_period_end"),
		CancelAtPeriodEnd: boolean(obj, "cancelAtPeriodEnd || cancel_at_period_end"),
		TrialEndsAt:       timestamp(obj, "trialEndsAt || trialEnd || trial_end"),
	}, nil
}

// Checkout calls POST /api/subscription/checkout/pro and returns the hosted checkout URL.
func (c *Client) Checkout(ctx context.Context, token string) (string, error) {
	return c.redirectURL(ctx, pathCheckoutPro, token)
}

// Portal calls POST /api/stripe/connect/portal and returns the customer portal URL.
func (c *Client) Portal(ctx context.Context, token string) (string, error) {
	return c.redirectURL(ctx, pathPortal, token)
}

// Cancel calls POST /api/stripe/connect/cancel.
func (c *Client) Cancel(ctx context.Context, token string) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: pathCancel, endpoint: pathCancel, token: token})
	return err
}

// Resume calls POST /api/stripe/connect/resume.
func (c *Client) Resume(ctx context.Context, token string) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: pathResume, endpoint: pathResume, token: token})
	return err
}

func (c *Client) redirectURL(ctx context.Context, path, token string) (string, error) {
	doc, err := c.doJSON(ctx, call{method: http.MethodPost, path: path, endpoint: path, token: token})
	if err != nil {
		return "", err
	}
	u := str(doc, "data.url || url")
	if u == "" {
		return "", errors.New(path + ": response missing url")
	}
	return u, nil
}

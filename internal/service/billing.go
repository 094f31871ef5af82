package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/observability/metrics"
	"github.com/stagepass/portal/internal/observability/statsd"
	"github.com/stagepass/portal/internal/ports"
)

var (
	// ErrAlreadyCanceling refuses a cancel when the subscription already ends at period end.
	ErrAlreadyCanceling = errors.New("subscription is already set to cancel")
	// ErrBillingRefresh means a billing mutation succeeded but the follow-up status fetch failed.
	ErrBillingRefresh = errors.New("billing status refresh failed")
)

// BillingServiceOptions groups dependencies for BillingService.
type BillingServiceOptions struct {
	Gateway ports.BillingGateway // Required
	Guard   ports.InflightGuard  // Optional: nil runs actions unguarded
	Metrics statsd.Sink          // Optional
}

// BillingService fronts the backend subscription endpoints.
// Status is never cached: every view and every mutation fetches it fresh.
type BillingService struct {
	gateway ports.BillingGateway
	guard   ports.InflightGuard
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewBillingService constructs a new BillingService.
func NewBillingService(opts BillingServiceOptions) *BillingService {
	if opts.Gateway == nil {
		panic("BillingGateway is required")
	}
	return &BillingService{
		gateway: opts.Gateway,
		guard:   opts.Guard,
		metrics: opts.Metrics,
		logger:  slog.Default(),
	}
}

// FetchBilling returns the current subscription status. Single attempt.
func (s *BillingService) FetchBilling(ctx context.Context, token string) (billing.BillingStatus, error) {
	st, err := s.gateway.Status(ctx, token)
	if err != nil {
		return billing.BillingStatus{}, fmt.Errorf("fetch billing status: %w", err)
	}
	return st, nil
}

// Upgrade starts a pro checkout and returns the hosted checkout URL.
func (s *BillingService) Upgrade(ctx context.Context, actor Actor) (string, error) {
	var url string
	err := s.action(ctx, actor, "upgrade", func(ctx context.Context) error {
		var err error
		url, err = s.gateway.Checkout(ctx, actor.Token)
		return err
	})
	return url, err
}

// OpenPortal returns the hosted customer portal URL.
func (s *BillingService) OpenPortal(ctx context.Context, actor Actor) (string, error) {
	var url string
	err := s.action(ctx, actor, "portal", func(ctx context.Context) error {
		var err error
		url, err = s.gateway.Portal(ctx, actor.Token)
		return err
	})
	return url, err
}

// Cancel sets the subscription to end at period end and returns the fresh status.
func (s *BillingService) Cancel(ctx context.Context, actor Actor) (billing.BillingStatus, error) {
	var fresh billing.BillingStatus
	err := s.action(ctx, actor, "cancel", func(ctx context.Context) error {
		current, err := s.gateway.Status(ctx, actor.Token)
		if err != nil {
			return err
		}
		if current.CancelAtPeriodEnd {
			return ErrAlreadyCanceling
		}
		if err := s.gateway.Cancel(ctx, actor.Token); err != nil {
			return err
		}
		fresh, err = s.refetch(ctx, actor.Token)
		return err
	})
	return fresh, err
}

// Resume undoes a pending cancellation and returns the fresh status.
func (s *BillingService) Resume(ctx context.Context, actor Actor) (billing.BillingStatus, error) {
	var fresh billing.BillingStatus
	err := s.action(ctx, actor, "resume", func(ctx context.Context) error {
		if err := s.gateway.Resume(ctx, actor.Token); err != nil {
			return err
		}
		var err error
		fresh, err = s.refetch(ctx, actor.Token)
		return err
	})
	return fresh, err
}

// Capabilities resolves what the actor's plan unlocks. When billing cannot be
// reached the cached plan on the user record is used instead; a 401 is returned as is.
func (s *BillingService) Capabilities(ctx context.Context, actor Actor) (billing.Capabilities, error) {
	st, err := s.gateway.Status(ctx, actor.Token)
	if err != nil {
		if apierror.IsUnauthorized(err) {
			return billing.Capabilities{}, fmt.Errorf("fetch billing status: %w", err)
		}
		s.logger.WarnContext(ctx, "billing status unavailable, using cached plan",
			"user_id", actor.User.ID,
			"plan", actor.User.SubscriptionPlan,
			"error", err,
		)
		return billing.CapabilitiesFor(actor.User.UserType, actor.User.SubscriptionPlan), nil
	}
	return billing.CapabilitiesFor(actor.User.UserType, st.EffectivePlan()), nil
}

func (s *BillingService) refetch(ctx context.Context, token string) (billing.BillingStatus, error) {
	st, err := s.gateway.Status(ctx, token)
	if err != nil {
		return billing.BillingStatus{}, fmt.Errorf("%w: %w", ErrBillingRefresh, err)
	}
	return st, nil
}

// action runs fn under the per-user billing guard and records the outcome.
func (s *BillingService) action(ctx context.Context, actor Actor, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := guarded(ctx, s.guard, "billing:"+actor.User.ID, fn)

	result := metrics.ResultFor(err)
	if errors.Is(err, ErrInFlight) || errors.Is(err, ErrAlreadyCanceling) {
		result = metrics.ResultRejected
	}
	metrics.EmitBillingAction(s.metrics, metrics.BillingMetric{
		Action:   name,
		Role:     string(actor.User.UserType),
		Result:   result,
		Duration: time.Since(start),
		Err:      err,
	})

	if err != nil && !errors.Is(err, ErrBillingRefresh) {
		return fmt.Errorf("billing %s: %w", name, err)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "billing action applied but status refresh failed", "action", name, "error", err)
	}
	return err
}

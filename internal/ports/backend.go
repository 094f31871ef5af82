package ports

import (
	"context"
	"errors"
	"io"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
)

// BillingGateway talks to the backend's subscription endpoints.
// It does not retry; each call is a single attempt.
type BillingGateway interface {
	Status(ctx context.Context, token string) (billing.BillingStatus, error)
	// Checkout starts a pro upgrade and returns the hosted checkout URL.
	Checkout(ctx context.Context, token string) (string, error)
	// Portal returns the hosted customer portal URL.
	Portal(ctx context.Context, token string) (string, error)
	Cancel(ctx context.Context, token string) error
	Resume(ctx context.Context, token string) error
}

// Upload is a single file headed for a backend collection.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// ResourceClient performs CRUD against a backend collection.
// List normalizes every envelope shape the backend uses into a plain slice.
type ResourceClient interface {
	List(ctx context.Context, token string, res resource.Resource) ([]resource.Item, error)
	Get(ctx context.Context, token string, res resource.Resource, id string) (resource.Item, error)
	Create(ctx context.Context, token string, res resource.Resource, body any) (resource.Item, error)
	Update(ctx context.Context, token string, res resource.Resource, id string, body any) (resource.Item, error)
	Delete(ctx context.Context, token string, res resource.Resource, id string) error
	Upload(ctx context.Context, token string, res resource.Resource, file Upload) (resource.Item, error)
}

// ContactMessage is a support request from the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactSender delivers contact form submissions.
type ContactSender interface {
	SendContact(ctx context.Context, msg ContactMessage) error
}

// ErrInFlight is returned by an InflightGuard when the same key is already executing.
var ErrInFlight = errors.New("action already in progress")

// InflightGuard prevents duplicate concurrent execution of the same keyed action.
// A duplicate caller gets ErrInFlight without running fn, so fn never runs twice at once for one key.
type InflightGuard interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// ProfileUpdate carries editable profile fields.
type ProfileUpdate struct {
	Biography string `json:"biography"`
}

// ProfileWriter updates the signed-in user's public profile.
type ProfileWriter interface {
	UpdateProfile(ctx context.Context, token string, in ProfileUpdate) error
}

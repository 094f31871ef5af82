package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/validation"
)

const (
	maxBiographyLength = 1000
	maxTitleLength     = 200
	maxDetailsLength   = 2000
)

// ErrFeatureLocked means the actor's plan does not include the feature.
var ErrFeatureLocked = errors.New("feature not included in current plan")

// capabilityResolver is the slice of BillingService resource rules need.
type capabilityResolver interface {
	Capabilities(ctx context.Context, actor Actor) (billing.Capabilities, error)
}

// ResourceBackends are the backend ports ResourceService drives.
type ResourceBackends struct {
	Client   ports.ResourceClient // Required
	Profiles ports.ProfileWriter  // Optional: nil disables biography edits
}

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	Backends     ResourceBackends
	Capabilities capabilityResolver // Required
	Guard        ports.InflightGuard
}

// ResourceService implements the role dashboards' collection flows.
type ResourceService struct {
	client   ports.ResourceClient
	profiles ports.ProfileWriter
	caps     capabilityResolver
	guard    ports.InflightGuard
}

// NewResourceService constructs a new ResourceService.
func NewResourceService(opts ResourceServiceOptions) *ResourceService {
	if opts.Backends.Client == nil {
		panic("ResourceClient is required")
	}
	if opts.Capabilities == nil {
		panic("capability resolver is required")
	}
	return &ResourceService{
		client:   opts.Backends.Client,
		profiles: opts.Backends.Profiles,
		caps:     opts.Capabilities,
		guard:    opts.Guard,
	}
}

// Resolve finds the resource kind for the actor's role.
func (s *ResourceService) Resolve(actor Actor, kind string) (resource.Resource, error) {
	res, ok := resource.Lookup(actor.User.UserType, kind)
	if !ok {
		return resource.Resource{}, apperrors.NotFoundf("%s has no %q section", actor.User.UserType, kind)
	}
	return res, nil
}

// List returns the actor's records of kind.
func (s *ResourceService) List(ctx context.Context, actor Actor, kind string) (resource.Resource, []resource.Item, error) {
	res, err := s.Resolve(actor, kind)
	if err != nil {
		return resource.Resource{}, nil, err
	}
	items, err := s.client.List(ctx, actor.Token, res)
	if err != nil {
		return res, nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return res, items, nil
}

// Delete removes one record under the actor's "<kind>:<user>:<id>" guard.
func (s *ResourceService) Delete(ctx context.Context, actor Actor, kind, id string) error {
	res, err := s.Resolve(actor, kind)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "ID is required.")
	}
	err = guarded(ctx, s.guard, recordKey(kind, actor, id), func(ctx context.Context) error {
		return s.client.Delete(ctx, actor.Token, res, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

// Upload stores a file in an uploadable collection, enforcing the plan's slot limit first.
// A full collection returns the limit error without any upload call. One upload per
// user and collection runs at a time, so the slot count cannot be raced.
func (s *ResourceService) Upload(ctx context.Context, actor Actor, kind string, file ports.Upload) (resource.Item, error) {
	res, err := s.Resolve(actor, kind)
	if err != nil {
		return resource.Item{}, err
	}
	if !res.Uploadable {
		return resource.Item{}, apperrors.NotFoundf("%s does not accept uploads", kind)
	}

	var item resource.Item
	err = guarded(ctx, s.guard, kind+":upload:"+actor.User.ID, func(ctx context.Context) error {
		caps, err := s.caps.Capabilities(ctx, actor)
		if err != nil {
			return err
		}
		existing, err := s.client.List(ctx, actor.Token, res)
		if err != nil {
			return fmt.Errorf("count existing %s: %w", kind, err)
		}
		if err := checkSlots(res.Kind, caps, len(existing)); err != nil {
			return err
		}
		item, err = s.client.Upload(ctx, actor.Token, res, file)
		return err
	})
	if err != nil {
		return resource.Item{}, fmt.Errorf("upload %s: %w", kind, err)
	}
	return item, nil
}

// UploadPhoto is Upload for the photos collection.
func (s *ResourceService) UploadPhoto(ctx context.Context, actor Actor, file ports.Upload) (resource.Item, error) {
	return s.Upload(ctx, actor, string(resource.KindPhotos), file)
}

// Get fetches one editable record.
func (s *ResourceService) Get(ctx context.Context, actor Actor, kind, id string) (resource.Resource, resource.Item, error) {
	res, err := s.resolveEditable(actor, kind)
	if err != nil {
		return resource.Resource{}, resource.Item{}, err
	}
	item, err := s.client.Get(ctx, actor.Token, res, id)
	if err != nil {
		return res, resource.Item{}, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return res, item, nil
}

// Create adds a record to an editable collection. Marketplace listings need a plan
// that includes them.
func (s *ResourceService) Create(ctx context.Context, actor Actor, kind string, in resource.Draft) (resource.Item, error) {
	res, err := s.resolveEditable(actor, kind)
	if err != nil {
		return resource.Item{}, err
	}
	in, err = validateDraft(in)
	if err != nil {
		return resource.Item{}, err
	}
	if res.Kind == resource.KindListings {
		caps, err := s.caps.Capabilities(ctx, actor)
		if err != nil {
			return resource.Item{}, fmt.Errorf("create %s: %w", kind, err)
		}
		if !caps.MarketplaceListing {
			return resource.Item{}, apperrors.Forbidden("Upgrade to Pro to list in the marketplace.", ErrFeatureLocked)
		}
	}

	var item resource.Item
	err = guarded(ctx, s.guard, kind+":create:"+actor.User.ID, func(ctx context.Context) error {
		var err error
		item, err = s.client.Create(ctx, actor.Token, res, in)
		return err
	})
	if err != nil {
		return resource.Item{}, fmt.Errorf("create %s: %w", kind, err)
	}
	return item, nil
}

// Update replaces a record's title and details under the same guard as Delete.
func (s *ResourceService) Update(ctx context.Context, actor Actor, kind, id string, in resource.Draft) (resource.Item, error) {
	res, err := s.resolveEditable(actor, kind)
	if err != nil {
		return resource.Item{}, err
	}
	if strings.TrimSpace(id) == "" {
		return resource.Item{}, apperrors.ValidationField("id", "ID is required.")
	}
	in, err = validateDraft(in)
	if err != nil {
		return resource.Item{}, err
	}

	var item resource.Item
	err = guarded(ctx, s.guard, recordKey(kind, actor, id), func(ctx context.Context) error {
		var err error
		item, err = s.client.Update(ctx, actor.Token, res, id, in)
		return err
	})
	if err != nil {
		return resource.Item{}, fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	return item, nil
}

func (s *ResourceService) resolveEditable(actor Actor, kind string) (resource.Resource, error) {
	res, err := s.Resolve(actor, kind)
	if err != nil {
		return resource.Resource{}, err
	}
	if !res.Editable {
		return resource.Resource{}, apperrors.NotFoundf("%s cannot be edited here", kind)
	}
	return res, nil
}

func validateDraft(in resource.Draft) (resource.Draft, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Details = strings.TrimSpace(in.Details)
	if fields := validation.New().
		Validate("title", in.Title, validation.Required("Title", maxTitleLength)).
		Validate("details", in.Details, validation.Optional("Details", maxDetailsLength)).
		Errors(); len(fields) > 0 {
		return in, apperrors.Validation(fields)
	}
	return in, nil
}

// recordKey scopes per-record mutations to the acting user.
func recordKey(kind string, actor Actor, id string) string {
	return kind + ":" + actor.User.ID + ":" + id
}

func checkSlots(kind resource.Kind, caps billing.Capabilities, existing int) error {
	switch kind {
	case resource.KindPhotos:
		return caps.CheckPhotoUpload(existing)
	case resource.KindTracks:
		return caps.CheckAudioUpload(existing)
	default:
		return nil
	}
}

// UpdateBiography saves the public biography when the plan allows it.
func (s *ResourceService) UpdateBiography(ctx context.Context, actor Actor, bio string) error {
	if s.profiles == nil {
		return apperrors.NotFound("profile editing is not available")
	}
	if fields := validation.New().
		Validate("biography", bio, validation.Optional("Biography", maxBiographyLength)).
		Errors(); len(fields) > 0 {
		return apperrors.Validation(fields)
	}

	caps, err := s.caps.Capabilities(ctx, actor)
	if err != nil {
		return fmt.Errorf("update biography: %w", err)
	}
	if !caps.Biography {
		return apperrors.Forbidden("Upgrade to Pro to add a biography.", ErrFeatureLocked)
	}

	err = guarded(ctx, s.guard, "profile:"+actor.User.ID, func(ctx context.Context) error {
		return s.profiles.UpdateProfile(ctx, actor.Token, ports.ProfileUpdate{Biography: strings.TrimSpace(bio)})
	})
	if err != nil {
		return fmt.Errorf("update biography: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/mocks"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/testutil"
)

// fixedCaps resolves every actor to the same capability set.
type fixedCaps struct {
	caps billing.Capabilities
	err  error
}

func (f fixedCaps) Capabilities(context.Context, Actor) (billing.Capabilities, error) {
	return f.caps, f.err
}

type fakeProfiles struct {
	got   []ports.ProfileUpdate
	calls int
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, _ string, in ports.ProfileUpdate) error {
	f.calls++
	f.got = append(f.got, in)
	return nil
}

func items(n int) []resource.Item {
	out := make([]resource.Item, n)
	for i := range out {
		out[i] = resource.Item{ID: strings.Repeat("p", i+1)}
	}
	return out
}

func TestResourceService_UploadPhotoRejectedAtLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanPro)},
		Guard:        NewLocalInflight(),
	})

	client.EXPECT().List(gomock.Any(), "token-1", gomock.Any()).Return(items(billing.MaxPhotos), nil)
	client.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UploadPhoto(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanPro), ports.Upload{
		Filename: "sixth.jpg", Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, billing.ErrPhotoLimitReached)
}

func TestResourceService_UploadPhotoBelowLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanFree)},
	})

	client.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(items(2), nil)
	client.EXPECT().Upload(gomock.Any(), "token-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, res resource.Resource, file ports.Upload) (resource.Item, error) {
			assert.Equal(t, resource.KindPhotos, res.Kind)
			assert.Equal(t, "third.jpg", file.Filename)
			return resource.Item{ID: "p3"}, nil
		})

	item, err := svc.UploadPhoto(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), ports.Upload{
		Filename: "third.jpg", Body: strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "p3", item.ID)
}

func TestResourceService_TrackUploadUsesAudioSlots(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanFree)},
	})

	client.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(items(1), nil)
	client.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Upload(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "tracks", ports.Upload{
		Filename: "demo.mp3", Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, billing.ErrAudioLimitReached)
}

func TestResourceService_ListUnknownKindForRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{Backends: ResourceBackends{Client: client}, Capabilities: fixedCaps{}})

	_, _, err := svc.List(context.Background(), testActor(domainauth.RoleJournalist, domainauth.PlanFree), "photos")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestResourceService_DeleteUsesGuardKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	guard := &recordingGuard{}
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{},
		Guard:        guard,
	})

	client.EXPECT().Delete(gomock.Any(), "token-1", gomock.Any(), "g1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "gigs", "g1"))
	assert.Equal(t, []string{"gigs:user-1:g1"}, guard.keys)
}

func TestResourceService_DeleteKeysAreScopedToUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	guard := &recordingGuard{}
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{},
		Guard:        guard,
	})
	client.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any(), "g1").Return(nil).Times(2)

	other := testutil.NewSession().WithUserID("user-2").WithRole(domainauth.RoleArtist).Build()
	require.NoError(t, svc.Delete(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "gigs", "g1"))
	require.NoError(t, svc.Delete(context.Background(), Actor{User: other.User, Token: other.Token}, "gigs", "g1"))

	require.Len(t, guard.keys, 2)
	assert.NotEqual(t, guard.keys[0], guard.keys[1])
}

func TestResourceService_ConcurrentPhotoUploadsCannotExceedLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanPro)},
		Guard:        NewLocalInflight(),
	})
	actor := testActor(domainauth.RoleArtist, domainauth.PlanPro)

	entered := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).Return(items(billing.MaxPhotos-1), nil).Times(1)
	client.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, resource.Resource, ports.Upload) (resource.Item, error) {
			close(entered)
			<-release
			return resource.Item{ID: "p5"}, nil
		}).Times(1)

	first := make(chan error, 1)
	go func() {
		_, err := svc.UploadPhoto(context.Background(), actor, ports.Upload{Filename: "a.jpg", Body: strings.NewReader("a")})
		first <- err
	}()
	<-entered

	_, err := svc.UploadPhoto(context.Background(), actor, ports.Upload{Filename: "b.jpg", Body: strings.NewReader("b")})
	require.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-first)
}

func TestResourceService_DeleteInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{},
		Guard:        &recordingGuard{err: ErrInFlight},
	})

	err := svc.Delete(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "gigs", "g1")
	assert.True(t, errors.Is(err, ErrInFlight))
}

func TestResourceService_UpdateBiography(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)

	t.Run("locked on free plan", func(t *testing.T) {
		profiles := &fakeProfiles{}
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client, Profiles: profiles},
			Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanFree)},
		})
		err := svc.UpdateBiography(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "Hello")
		assert.True(t, apperrors.IsForbidden(err))
		assert.ErrorIs(t, err, ErrFeatureLocked)
		assert.Zero(t, profiles.calls)
	})

	t.Run("saved on pro plan", func(t *testing.T) {
		profiles := &fakeProfiles{}
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client, Profiles: profiles},
			Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanPro)},
		})
		err := svc.UpdateBiography(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanPro), "  Touring since 2019. ")
		require.NoError(t, err)
		require.Len(t, profiles.got, 1)
		assert.Equal(t, "Touring since 2019.", profiles.got[0].Biography)
	})

	t.Run("too long", func(t *testing.T) {
		profiles := &fakeProfiles{}
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client, Profiles: profiles},
			Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleArtist, billing.PlanPro)},
		})
		err := svc.UpdateBiography(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanPro), strings.Repeat("x", 1001))
		assert.True(t, apperrors.IsValidation(err))
		assert.Zero(t, profiles.calls)
	})
}

type recordingGuard struct {
	keys []string
	err  error
}

func (g *recordingGuard) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	g.keys = append(g.keys, key)
	if g.err != nil {
		return g.err
	}
	return fn(ctx)
}

func TestResourceService_Create(t *testing.T) {
	t.Run("trims and posts the draft", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		guard := &recordingGuard{}
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client},
			Capabilities: fixedCaps{},
			Guard:        guard,
		})
		client.EXPECT().Create(gomock.Any(), "token-1", gomock.Any(), resource.Draft{Title: "Summer tour", Details: "Ten cities"}).
			Return(resource.Item{ID: "g9", Title: "Summer tour"}, nil)

		item, err := svc.Create(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "gigs",
			resource.Draft{Title: "  Summer tour ", Details: "Ten cities\n"})
		require.NoError(t, err)
		assert.Equal(t, "g9", item.ID)
		assert.Equal(t, []string{"gigs:create:user-1"}, guard.keys)
	})

	t.Run("title required", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		svc := NewResourceService(ResourceServiceOptions{Backends: ResourceBackends{Client: client}, Capabilities: fixedCaps{}})

		_, err := svc.Create(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "gigs", resource.Draft{Title: "  "})
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, apperrors.FieldsOf(err), "title")
	})

	t.Run("uploadable collections are not editable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		svc := NewResourceService(ResourceServiceOptions{Backends: ResourceBackends{Client: client}, Capabilities: fixedCaps{}})

		_, err := svc.Create(context.Background(), testActor(domainauth.RoleArtist, domainauth.PlanFree), "photos", resource.Draft{Title: "x"})
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
	})

	t.Run("listing locked on free plan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client},
			Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleStudio, billing.PlanFree)},
		})
		client.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Create(context.Background(), testActor(domainauth.RoleStudio, domainauth.PlanFree), "listings", resource.Draft{Title: "Room A"})
		assert.True(t, apperrors.IsForbidden(err))
		assert.ErrorIs(t, err, ErrFeatureLocked)
	})

	t.Run("listing allowed on pro plan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := mocks.NewMockResourceClient(ctrl)
		svc := NewResourceService(ResourceServiceOptions{
			Backends:     ResourceBackends{Client: client},
			Capabilities: fixedCaps{caps: billing.CapabilitiesFor(domainauth.RoleStudio, billing.PlanPro)},
		})
		client.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), resource.Draft{Title: "Room A"}).
			Return(resource.Item{ID: "l1"}, nil)

		_, err := svc.Create(context.Background(), testActor(domainauth.RoleStudio, domainauth.PlanPro), "listings", resource.Draft{Title: "Room A"})
		assert.NoError(t, err)
	})
}

func TestResourceService_GetAndUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	guard := &recordingGuard{}
	svc := NewResourceService(ResourceServiceOptions{
		Backends:     ResourceBackends{Client: client},
		Capabilities: fixedCaps{},
		Guard:        guard,
	})
	actor := testActor(domainauth.RoleJournalist, domainauth.PlanFree)

	client.EXPECT().Get(gomock.Any(), "token-1", gomock.Any(), "a1").Return(resource.Item{ID: "a1", Title: "Draft"}, nil)
	client.EXPECT().Update(gomock.Any(), "token-1", gomock.Any(), "a1", resource.Draft{Title: "Final"}).
		Return(resource.Item{ID: "a1", Title: "Final"}, nil)

	res, item, err := svc.Get(context.Background(), actor, "articles", "a1")
	require.NoError(t, err)
	assert.Equal(t, resource.KindArticles, res.Kind)
	assert.Equal(t, "Draft", item.Title)

	item, err = svc.Update(context.Background(), actor, "articles", "a1", resource.Draft{Title: " Final "})
	require.NoError(t, err)
	assert.Equal(t, "Final", item.Title)
	assert.Equal(t, []string{"articles:user-1:a1"}, guard.keys)
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/ports"
)

func TestMockBackendAuth_Defaults(t *testing.T) {
	backend := NewMockBackendAuth()
	ctx := context.Background()

	res, err := backend.Login(ctx, ports.Credentials{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "token-1", res.Token)
	assert.Equal(t, "artist", res.User.UserType)

	me, err := backend.Me(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", me.ID)

	assert.Equal(t, 1, backend.LoginCalls)
	assert.Equal(t, 1, backend.MeCalls)
}

func TestMockBackendAuth_CustomFuncs(t *testing.T) {
	backend := &MockBackendAuth{
		LoginFunc: func(_ context.Context, _ ports.Credentials) (ports.LoginResult, error) {
			return ports.LoginResult{}, errors.New("invalid")
		},
	}

	_, err := backend.Login(context.Background(), ports.Credentials{})
	require.Error(t, err)
	assert.Equal(t, 1, backend.LoginCalls)
}

func TestStaticRoleMapper(t *testing.T) {
	role, ok := StaticRoleMapper{}.Map("Venue")
	assert.True(t, ok)
	assert.Equal(t, domainauth.RoleVenue, role)

	_, ok = StaticRoleMapper{}.Map("fan")
	assert.False(t, ok)
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "s-1",
		User:      domainauth.User{ID: "user-1", UserType: domainauth.RoleArtist},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, got.User.ID)

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Get(ctx, "s-1")
	assert.Equal(t, ErrNotFound, err)
}

func TestMemorySessionStore_EmptyIDs(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	err := store.Save(ctx, domainauth.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session ID cannot be empty")

	_, err = store.Get(ctx, "")
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, store.Delete(ctx, ""))
}

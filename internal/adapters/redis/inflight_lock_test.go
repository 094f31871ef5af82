package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/portal/internal/ports"
)

func TestInflightLock_RejectsConcurrentDuplicate(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewInflightLock(client, time.Minute)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- lock.Do(ctx, "billing:user-1", func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ran := false
	err := lock.Do(ctx, "billing:user-1", func(context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ports.ErrInFlight)
	assert.False(t, ran)

	close(release)
	require.NoError(t, <-done)

	// Released: the key can be taken again.
	require.NoError(t, lock.Do(ctx, "billing:user-1", func(context.Context) error { return nil }))
}

func TestInflightLock_ReleasesOnError(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewInflightLock(client, time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	err := lock.Do(ctx, "photos:p1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	exists, err := client.Exists(ctx, "inflight:photos:p1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestInflightLock_EmptyKey(t *testing.T) {
	lock := NewInflightLock(setupTestRedis(t), 0)
	err := lock.Do(context.Background(), "", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestInflightLock_KeysAndClear(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewInflightLock(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "inflight:billing:u1", "owner", time.Minute).Err())
	require.NoError(t, client.Set(ctx, "inflight:photos:u2", "owner", time.Minute).Err())
	require.NoError(t, client.Set(ctx, "session:s1", "{}", time.Minute).Err())

	keys, err := lock.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"billing:u1", "photos:u2"}, keys)

	n, err := lock.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A cleared key can be taken again; unrelated keys survive.
	require.NoError(t, lock.Do(ctx, "billing:u1", func(context.Context) error { return nil }))
	exists, err := client.Exists(ctx, "session:s1").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, exists)

	n, err = lock.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stagepass/portal/internal/ports"
)

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// InflightLock is a cross-instance ports.InflightGuard built on SET NX.
// The TTL bounds how long a crashed holder can block the key.
type InflightLock struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.InflightGuard = (*InflightLock)(nil)

// NewInflightLock creates an InflightLock. A non-positive ttl defaults to 30s.
func NewInflightLock(client redis.UniversalClient, ttl time.Duration) *InflightLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &InflightLock{client: client, prefix: "inflight:", ttl: ttl}
}

// Do runs fn while holding key. A held key returns ports.ErrInFlight without running fn.
func (l *InflightLock) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if key == "" {
		return errors.New("inflight key cannot be empty")
	}

	owner := uuid.NewString()
	full := l.prefix + key

	ok, err := l.client.SetNX(ctx, full, owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire inflight lock: %w", err)
	}
	if !ok {
		return ports.ErrInFlight
	}

	defer func() {
		// Release even if the request context was canceled mid-action.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(relCtx, l.client, []string{full}, owner).Err()
	}()

	return fn(ctx)
}

// Keys lists the currently held lock keys without their prefix.
func (l *InflightLock) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := l.client.Scan(ctx, 0, l.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), l.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan inflight locks: %w", err)
	}
	return keys, nil
}

// Clear force-releases every held lock. Use only when a crashed instance left keys behind.
func (l *InflightLock) Clear(ctx context.Context) (int, error) {
	keys, err := l.Keys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = l.prefix + k
	}
	n, err := l.client.Del(ctx, full...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete inflight locks: %w", err)
	}
	return int(n), nil
}

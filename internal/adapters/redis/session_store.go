// Package redis provides Redis-backed adapters for the portal: sessions and in-flight action locks.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/ports"
)

// SessionStore keeps portal sessions in Redis.
// Keys expire with the session so Redis does the garbage collection.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithKeyPrefix overrides the default "session:" key prefix.
func WithKeyPrefix(prefix string) SessionStoreOption {
	return func(s *SessionStore) { s.prefix = prefix }
}

// WithClock sets the time source used for TTL math.
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates a Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{client: client, prefix: "session:", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.client.Set(ctx, s.prefix+sess.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Key TTL and ExpiresAt can disagree across clock skew.
	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// ErrNotFound is returned when a session is not found.
var ErrNotFound = ports.ErrSessionNotFound

// scanCount is the SCAN batch hint for admin sweeps.
const scanCount = 500

// List returns every live session. It walks the keyspace with SCAN and is meant for admin tooling.
func (s *SessionStore) List(ctx context.Context) ([]domainauth.Session, error) {
	var out []domainauth.Session
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}
		var sess domainauth.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if sess.Expired(s.now()) {
			continue
		}
		out = append(out, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return out, nil
}

// DeleteUser removes every session belonging to userID and reports how many were removed.
func (s *SessionStore) DeleteUser(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("user ID cannot be empty")
	}
	sessions, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, sess := range sessions {
		if sess.User.ID != userID {
			continue
		}
		if err := s.Delete(ctx, sess.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

package service

import (
	"context"
	"sync"

	"github.com/stagepass/portal/internal/ports"
)

// ErrInFlight is returned when the same keyed action is already running.
var ErrInFlight = ports.ErrInFlight

// LocalInflight is a single-process ports.InflightGuard.
// While a key is held, other callers for it get ErrInFlight, matching the Redis lock.
type LocalInflight struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ ports.InflightGuard = (*LocalInflight)(nil)

// NewLocalInflight creates a LocalInflight.
func NewLocalInflight() *LocalInflight {
	return &LocalInflight{held: make(map[string]struct{})}
}

// Do runs fn while holding key, or returns ErrInFlight if another caller holds it.
func (g *LocalInflight) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if !g.acquire(key) {
		return ErrInFlight
	}
	defer g.release(key)
	return fn(ctx)
}

func (g *LocalInflight) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return false
	}
	g.held[key] = struct{}{}
	return true
}

func (g *LocalInflight) release(key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}

// guarded runs fn through guard, or directly when guard is nil.
func guarded(ctx context.Context, guard ports.InflightGuard, key string, fn func(ctx context.Context) error) error {
	if guard == nil {
		return fn(ctx)
	}
	return guard.Do(ctx, key, fn)
}

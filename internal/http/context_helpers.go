package httpx

import (
	"context"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/service"
)

// sessionStateKey is an unexported context key type to avoid collisions across packages.
type sessionStateKey struct{}

// SetSessionStateInContext returns a child context that carries the resolved session state.
func SetSessionStateInContext(ctx context.Context, state domainauth.SessionState) context.Context {
	return context.WithValue(ctx, sessionStateKey{}, state)
}

// SessionStateFromContext returns the state set by ResolveSession and whether it ran.
func SessionStateFromContext(ctx context.Context) (domainauth.SessionState, bool) {
	state, ok := ctx.Value(sessionStateKey{}).(domainauth.SessionState)
	return state, ok
}

// ActorFromContext returns the signed-in actor, if the session resolved to a user.
func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	state, ok := SessionStateFromContext(ctx)
	if !ok {
		return service.Actor{}, false
	}
	return service.ActorFrom(state)
}

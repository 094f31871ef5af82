// Package service holds the portal's orchestration logic between HTTP handlers and backend ports.
package service

import (
	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Actor is the signed-in user a service call acts for.
type Actor struct {
	User  domainauth.User
	Token string
}

// ActorFrom extracts an Actor from a resolved session state.
func ActorFrom(state domainauth.SessionState) (Actor, bool) {
	if state.User == nil {
		return Actor{}, false
	}
	return Actor{User: *state.User, Token: state.Token}, true
}

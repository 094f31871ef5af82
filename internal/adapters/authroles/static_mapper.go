// Package authroles maps the marketplace API's user types onto portal roles.
package authroles

import (
	"strings"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/ports"
)

// defaultAliases covers the legacy user types older accounts still carry.
var defaultAliases = map[string]domainauth.Role{
	"band":          domainauth.RoleArtist,
	"musician":      domainauth.RoleArtist,
	"dj":            domainauth.RoleArtist,
	"promoter":      domainauth.RoleVenue,
	"club":          domainauth.RoleVenue,
	"recording":     domainauth.RoleStudio,
	"press":         domainauth.RoleJournalist,
	"writer":        domainauth.RoleJournalist,
	"administrator": domainauth.RoleAdmin,
}

// UserTypeMapper implements ports.RoleMapper.
// Canonical role names always map to themselves; Aliases extend the defaults.
type UserTypeMapper struct {
	Aliases map[string]domainauth.Role
}

var _ ports.RoleMapper = UserTypeMapper{}

func (m UserTypeMapper) Map(userType string) (domainauth.Role, bool) {
	if role, ok := domainauth.ParseRole(userType); ok {
		return role, true
	}
	key := strings.ToLower(strings.TrimSpace(userType))
	if role, ok := m.Aliases[key]; ok {
		return role, true
	}
	role, ok := defaultAliases[key]
	return role, ok
}

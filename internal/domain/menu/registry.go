// Package menu holds the static per-role navigation registry.
package menu

import (
	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Entry is a single sidebar link. Badge is optional.
type Entry struct {
	Label string
	Href  string
	Badge string
}

// DashboardBase is the prefix every role dashboard lives under.
const DashboardBase = "/dashboard"

// DashboardPath returns the root of a role's dashboard.
func DashboardPath(role domainauth.Role) string {
	return DashboardBase + "/" + string(role)
}

// Registry maps roles to their ordered menu entries.
type Registry struct {
	entries map[domainauth.Role][]Entry
}

// NewRegistry builds a registry from the given table. The table is copied.
func NewRegistry(table map[domainauth.Role][]Entry) *Registry {
	r := &Registry{entries: make(map[domainauth.Role][]Entry, len(table))}
	for role, list := range table {
		r.entries[role] = append([]Entry(nil), list...)
	}
	return r
}

// Default returns the registry the portal ships with.
func Default() *Registry {
	return NewRegistry(defaultTable())
}

// GetMenu returns the entries for role. Unknown roles get an empty, non-nil slice.
func (r *Registry) GetMenu(role string) []Entry {
	if r == nil {
		return []Entry{}
	}
	parsed, ok := domainauth.ParseRole(role)
	if !ok {
		return []Entry{}
	}
	list := r.entries[parsed]
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}

// Root returns the first entry's href for role, which is always the dashboard root.
func (r *Registry) Root(role domainauth.Role) string {
	if list := r.GetMenu(string(role)); len(list) > 0 {
		return list[0].Href
	}
	return DashboardPath(role)
}

func roleEntries(role domainauth.Role, rest ...Entry) []Entry {
	base := DashboardPath(role)
	out := []Entry{{Label: "Overview", Href: base}}
	for _, e := range rest {
		e.Href = base + e.Href
		out = append(out, e)
	}
	return append(out,
		Entry{Label: "Profile", Href: base + "/profile"},
		Entry{Label: "Billing", Href: base + "/billing", Badge: "Pro"},
	)
}

func defaultTable() map[domainauth.Role][]Entry {
	return map[domainauth.Role][]Entry{
		domainauth.RoleArtist: roleEntries(domainauth.RoleArtist,
			Entry{Label: "Photos", Href: "/photos"},
			Entry{Label: "Tracks", Href: "/tracks"},
			Entry{Label: "Gigs", Href: "/gigs"},
		),
		domainauth.RoleVenue: roleEntries(domainauth.RoleVenue,
			Entry{Label: "Photos", Href: "/photos"},
			Entry{Label: "Events", Href: "/events"},
			Entry{Label: "Bookings", Href: "/bookings", Badge: "New"},
		),
		domainauth.RolePhotographer: roleEntries(domainauth.RolePhotographer,
			Entry{Label: "Photos", Href: "/photos"},
			Entry{Label: "Galleries", Href: "/galleries"},
		),
		domainauth.RoleStudio: roleEntries(domainauth.RoleStudio,
			Entry{Label: "Photos", Href: "/photos"},
			Entry{Label: "Sessions", Href: "/sessions"},
			Entry{Label: "Listings", Href: "/listings"},
		),
		domainauth.RoleJournalist: roleEntries(domainauth.RoleJournalist,
			Entry{Label: "Articles", Href: "/articles"},
		),
		domainauth.RoleAdmin: {
			{Label: "Overview", Href: DashboardPath(domainauth.RoleAdmin)},
			{Label: "Users", Href: DashboardPath(domainauth.RoleAdmin) + "/users"},
		},
	}
}

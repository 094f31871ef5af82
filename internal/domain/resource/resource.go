// Package resource describes the backend collections each role manages from its dashboard.
package resource

import (
	"encoding/json"
	"fmt"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
)

// Kind identifies a managed collection.
type Kind string

const (
	KindPhotos    Kind = "photos"
	KindTracks    Kind = "tracks"
	KindGigs      Kind = "gigs"
	KindEvents    Kind = "events"
	KindBookings  Kind = "bookings"
	KindGalleries Kind = "galleries"
	KindSessions  Kind = "sessions"
	KindListings  Kind = "listings"
	KindArticles  Kind = "articles"
	KindUsers     Kind = "users"
)

// Resource binds a Kind to its backend path and display metadata.
type Resource struct {
	Kind  Kind
	Label string
	// APIPath is relative to the API base URL, e.g. "/api/photos".
	APIPath string
	// Uploadable resources accept multipart file uploads.
	Uploadable bool
	// Editable resources are created and edited from a title and details form.
	Editable bool
}

// Draft is the form payload for creating or editing a record.
type Draft struct {
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
}

// Item is one backend record. Fields are kept raw so unknown attributes survive round trips.
type Item struct {
	ID     string
	Title  string
	Fields map[string]json.RawMessage
}

// UnmarshalJSON accepts both "_id" and "id" and picks a human title from common keys.
func (i *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	i.Fields = raw
	i.ID = firstString(raw, "_id", "id")
	i.Title = firstString(raw, "title", "name", "caption", "username", "filename")
	return nil
}

// String returns a field as a string, or "" when absent or not a string.
func (i Item) String(key string) string {
	return firstString(i.Fields, key)
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

//nolint:gochecknoglobals // static read-only catalog.
var catalog = map[Kind]Resource{
	KindPhotos:    {Kind: KindPhotos, Label: "Photos", APIPath: "/api/photos", Uploadable: true},
	KindTracks:    {Kind: KindTracks, Label: "Tracks", APIPath: "/api/tracks", Uploadable: true},
	KindGigs:      {Kind: KindGigs, Label: "Gigs", APIPath: "/api/gigs", Editable: true},
	KindEvents:    {Kind: KindEvents, Label: "Events", APIPath: "/api/events", Editable: true},
	KindBookings:  {Kind: KindBookings, Label: "Bookings", APIPath: "/api/bookings"},
	KindGalleries: {Kind: KindGalleries, Label: "Galleries", APIPath: "/api/galleries", Editable: true},
	KindSessions:  {Kind: KindSessions, Label: "Sessions", APIPath: "/api/studio-sessions", Editable: true},
	KindListings:  {Kind: KindListings, Label: "Listings", APIPath: "/api/listings", Editable: true},
	KindArticles:  {Kind: KindArticles, Label: "Articles", APIPath: "/api/articles", Editable: true},
	KindUsers:     {Kind: KindUsers, Label: "Users", APIPath: "/api/admin/users"},
}

//nolint:gochecknoglobals // static read-only catalog.
var byRole = map[domainauth.Role][]Kind{
	domainauth.RoleArtist:       {KindPhotos, KindTracks, KindGigs},
	domainauth.RoleVenue:        {KindPhotos, KindEvents, KindBookings},
	domainauth.RolePhotographer: {KindPhotos, KindGalleries},
	domainauth.RoleStudio:       {KindPhotos, KindSessions, KindListings},
	domainauth.RoleJournalist:   {KindArticles},
	domainauth.RoleAdmin:        {KindUsers},
}

// Lookup returns the resource for kind if role may manage it.
func Lookup(role domainauth.Role, kind string) (Resource, bool) {
	for _, k := range byRole[role] {
		if string(k) == kind {
			return catalog[k], true
		}
	}
	return Resource{}, false
}

// ForRole lists the resources a role manages, in menu order.
func ForRole(role domainauth.Role) []Resource {
	kinds := byRole[role]
	out := make([]Resource, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, catalog[k])
	}
	return out
}

package resource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/menu"
)

func TestItem_UnmarshalAcceptsBothIDKeys(t *testing.T) {
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"a1","title":"Live at Fox"},{"id":"b2","name":"Poster"}]`), &items))

	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, "Live at Fox", items[0].Title)
	assert.Equal(t, "b2", items[1].ID)
	assert.Equal(t, "Poster", items[1].Title)
}

func TestItem_String(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","url":"https://cdn/x.jpg","size":12}`), &it))
	assert.Equal(t, "https://cdn/x.jpg", it.String("url"))
	assert.Empty(t, it.String("size"))
	assert.Empty(t, it.String("missing"))
}

func TestLookup_RespectsRole(t *testing.T) {
	r, ok := Lookup(domainauth.RoleArtist, "photos")
	require.True(t, ok)
	assert.True(t, r.Uploadable)

	_, ok = Lookup(domainauth.RoleJournalist, "photos")
	assert.False(t, ok)

	_, ok = Lookup(domainauth.RoleAdmin, "nope")
	assert.False(t, ok)
}

func TestForRole_MatchesMenu(t *testing.T) {
	reg := menu.Default()
	for _, role := range domainauth.Roles() {
		hrefs := map[string]bool{}
		for _, e := range reg.GetMenu(string(role)) {
			hrefs[e.Href] = true
		}
		for _, res := range ForRole(role) {
			assert.True(t, hrefs[menu.DashboardPath(role)+"/"+string(res.Kind)], "%s missing menu entry for %s", role, res.Kind)
		}
	}
}

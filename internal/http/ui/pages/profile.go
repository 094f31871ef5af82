package pages

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/http/ui/shell"
)

// ProfileFormID is the swap target for biography posts.
const ProfileFormID = "profile-form"

// ProfileView is the profile page state.
type ProfileView struct {
	Base      string
	User      domainauth.User
	Biography string
	// Locked hides the biography editor behind an upgrade prompt.
	Locked    bool
	Fields    map[string]string
	CSRFToken string
}

// Profile renders account details and the biography editor.
func Profile(v ProfileView) g.Node {
	return html.Section(
		html.Class("profile"),
		html.H2(g.Text("Profile")),
		html.Dl(
			html.Dt(g.Text("Username")), html.Dd(g.Text(v.User.Username)),
			html.Dt(g.Text("Email")), html.Dd(g.Text(v.User.Email)),
			html.Dt(g.Text("Account type")), html.Dd(g.Text(string(v.User.UserType))),
		),
		BiographyForm(v),
	)
}

// BiographyForm is the swappable biography fragment.
func BiographyForm(v ProfileView) g.Node {
	if v.Locked {
		return html.Div(html.ID(ProfileFormID), html.Class("locked"),
			html.P(g.Text("Upgrade to Pro to add a biography.")),
			html.A(html.Href(v.Base+"/billing"), g.Text("See plans")),
		)
	}
	path := v.Base + "/profile"
	return html.Form(
		html.ID(ProfileFormID),
		html.Method("post"),
		html.Action(path),
		g.Attr("hx-post", path),
		g.Attr("hx-target", "#"+ProfileFormID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		shell.CSRFField(v.CSRFToken),
		textarea("biography", "Biography", v.Biography, v.Fields["biography"], 8),
		html.Button(html.Type("submit"), g.Text("Save")),
	)
}

package pages

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/stagepass/portal/internal/http/ui/shell"
)

// SignInFormID is the swap target for htmx sign-in posts.
const SignInFormID = "signin-form"

// SignInView is the sign-in form state.
type SignInView struct {
	Email       string
	RedirectURI string
	Fields      map[string]string
	Error       string
	CSRFToken   string
}

// SignInPage renders the public sign-in document.
func SignInPage(v SignInView) g.Node {
	return shell.Document(shell.DocumentProps{Title: "Sign in", CSRFToken: v.CSRFToken},
		html.Main(html.Class("auth"),
			html.H1(g.Text("Sign in")),
			SignInForm(v),
			html.P(html.A(html.Href("/contact"), g.Text("Need help? Contact us"))),
		),
	)
}

// SignInForm is the swappable form fragment.
func SignInForm(v SignInView) g.Node {
	return html.Form(
		html.ID(SignInFormID),
		html.Method("post"),
		html.Action("/signin"),
		g.Attr("hx-post", "/signin"),
		g.Attr("hx-target", "#"+SignInFormID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		g.Attr("novalidate"),
		shell.CSRFField(v.CSRFToken),
		html.Input(html.Type("hidden"), html.Name("redirect_uri"), html.Value(v.RedirectURI)),
		Alert(v.Error),
		field("email", "Email", "email", v.Email, v.Fields["email"]),
		field("password", "Password", "password", "", v.Fields["password"]),
		html.Button(html.Type("submit"), g.Text("Sign in")),
	)
}

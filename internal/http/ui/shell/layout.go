package shell

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/menu"
)

// ContentID is the element htmx swaps for partial navigation.
const ContentID = "content"

// Nav is the sidebar state for one request.
type Nav struct {
	Entries []menu.Entry
	Current string
	Root    string
}

// Page carries everything the frame needs around the content.
type Page struct {
	Title     string
	User      domainauth.User
	Nav       Nav
	CSRFToken string
	Mobile    bool
	// Toast is shown once on load; used when a full page answers a non-htmx form post.
	Toast *Toast
}

// Toast is a one-shot notification.
type Toast struct {
	Message string
	Type    string
}

// Frame renders the full dashboard document: desktop sidebar, mobile slide-over and content.
func Frame(p Page, content g.Node) g.Node {
	return Document(DocumentProps{Title: p.Title, Mobile: p.Mobile, CSRFToken: p.CSRFToken, Toast: p.Toast},
		html.Div(
			html.Class("shell"),
			mobileBar(p),
			sidebar(p, "sidebar", "sidebar"),
			slideOver(p),
			html.Main(html.ID(ContentID), html.Class("content"), content),
		),
	)
}

// Loading is the neutral frame shown while the session's user is unresolved.
// It carries no navigation and re-requests path until the state settles.
func Loading(path string) g.Node {
	return Document(DocumentProps{Title: "Loading"},
		html.Div(
			html.ID("session-loading"),
			html.Class("loading-frame"),
			g.Attr("hx-get", path),
			g.Attr("hx-trigger", "load delay:2s"),
			g.Attr("hx-target", "body"),
			g.Attr("hx-swap", "outerHTML"),
			g.Attr("hx-select", "body"),
			g.Attr("aria-busy", "true"),
			html.P(g.Text("Loading your dashboard…")),
		),
	)
}

func mobileBar(p Page) g.Node {
	return html.Header(
		html.Class("mobile-bar"),
		html.Button(
			html.Type("button"),
			html.Class("mobile-toggle"),
			g.Attr("aria-controls", "mobile-nav"),
			g.Attr("aria-expanded", "false"),
			g.Attr("onclick", "portalShell.toggleMobile()"),
			g.Text("Menu"),
		),
		html.Span(html.Class("brand"), g.Text("Stagepass")),
		html.Span(html.Class("mobile-user"), g.Text(p.User.DisplayName())),
	)
}

func slideOver(p Page) g.Node {
	return html.Div(
		html.ID("mobile-nav"),
		html.Class("slide-over"),
		g.Attr("aria-hidden", "true"),
		html.Div(html.Class("slide-over-backdrop"), g.Attr("onclick", "portalShell.closeMobile()")),
		sidebar(p, "slide-over-panel", "mobile-sidebar"),
	)
}

func sidebar(p Page, class, id string) g.Node {
	return html.Aside(
		html.ID(id),
		html.Class(class),
		html.Div(html.Class("brand"), g.Text("Stagepass")),
		html.Nav(
			g.Attr("aria-label", "Dashboard"),
			html.Ul(
				html.Class("nav"),
				g.Map(p.Nav.Entries, func(e menu.Entry) g.Node {
					return navItem(e, p.Nav)
				}),
			),
		),
		html.Div(
			html.Class("sidebar-footer"),
			html.Div(html.Class("user"),
				html.Strong(g.Text(p.User.DisplayName())),
				html.Span(html.Class("role"), g.Text(string(p.User.UserType))),
			),
			LogoutForm(p.CSRFToken),
		),
	)
}

func navItem(e menu.Entry, nav Nav) g.Node {
	active := IsActive(e.Href, nav.Current, nav.Root)
	return html.Li(
		html.A(
			html.Href(e.Href),
			g.Attr("hx-get", e.Href),
			g.Attr("hx-target", "#"+ContentID),
			g.Attr("hx-push-url", "true"),
			g.Attr("data-nav-href", e.Href),
			g.Attr("data-nav-root", nav.Root),
			g.If(active, html.Class("nav-link active")),
			g.If(!active, html.Class("nav-link")),
			g.If(active, g.Attr("aria-current", "page")),
			g.Text(e.Label),
			g.If(e.Badge != "", html.Span(html.Class("badge"), g.Text(e.Badge))),
		),
	)
}

// LogoutForm posts to /auth/logout with the CSRF token.
func LogoutForm(csrfToken string) g.Node {
	return html.Form(
		html.Method("post"),
		html.Action("/auth/logout"),
		html.Class("logout"),
		CSRFField(csrfToken),
		html.Button(html.Type("submit"), g.Text("Sign out")),
	)
}

// CSRFField is the hidden double-submit token input.
func CSRFField(token string) g.Node {
	return html.Input(html.Type("hidden"), html.Name("csrf_token"), html.Value(token))
}

// DocumentProps configures the outer HTML document.
type DocumentProps struct {
	Title     string
	Mobile    bool
	CSRFToken string
	Toast     *Toast
}

// Document renders the html/head/body skeleton shared by every full page.
func Document(p DocumentProps, body ...g.Node) g.Node {
	title := "Stagepass"
	if p.Title != "" {
		title = p.Title + " · Stagepass"
	}
	bodyClass := ""
	if p.Mobile {
		bodyClass = "is-mobile"
	}
	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.Meta(g.Attr("http-equiv", "Accept-CH"), html.Content("Sec-CH-UA-Mobile, Sec-CH-Viewport-Width")),
				html.TitleEl(g.Text(title)),
				html.StyleEl(g.Raw(shellCSS())),
				HTMXScript(),
			),
			html.Body(
				g.If(bodyClass != "", html.Class(bodyClass)),
				g.If(p.CSRFToken != "", g.Attr("hx-headers", `{"X-Csrf-Token":"`+p.CSRFToken+`"}`)),
				g.Group(body),
				html.Div(html.ID("toasts"), html.Class("toasts"), g.Attr("aria-live", "polite"),
					g.If(p.Toast != nil && p.Toast.Message != "", toastNode(p.Toast)),
				),
				ShellScript(),
			),
		),
	)
}

func toastNode(t *Toast) g.Node {
	typ := t.Type
	if typ == "" {
		typ = "info"
	}
	return html.Div(html.Class("toast toast-"+typ), g.Attr("role", "status"), g.Text(t.Message))
}

func shellCSS() string {
	mobileMax := strconv.Itoa(MobileBreakpointPx - 1)
	return `.shell{display:flex;min-height:100vh}` +
		`.sidebar{width:240px;flex-shrink:0}` +
		`.content{flex:1;padding:1.5rem}` +
		`.mobile-bar{display:none}` +
		`.slide-over{display:none}` +
		`.slide-over.open{display:block;position:fixed;inset:0;z-index:40}` +
		`.nav-link.active{font-weight:600}` +
		`.toasts{position:fixed;right:1rem;bottom:1rem}` +
		`@media (max-width:` + mobileMax + `px){.sidebar{display:none}.mobile-bar{display:flex}.shell{flex-direction:column}}` +
		`body.is-mobile .sidebar{display:none}body.is-mobile .mobile-bar{display:flex}`
}

// LoadingFragment is the loading frame for htmx requests; it polls into the content region.
func LoadingFragment(path string) g.Node {
	return html.Div(
		html.ID("session-loading"),
		html.Class("loading-frame"),
		g.Attr("hx-get", path),
		g.Attr("hx-trigger", "load delay:2s"),
		g.Attr("hx-target", "#"+ContentID),
		g.Attr("aria-busy", "true"),
		html.P(g.Text("Loading your dashboard…")),
	)
}

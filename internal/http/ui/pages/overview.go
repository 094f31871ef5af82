package pages

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/billing"
)

// OverviewCard summarises one collection on the dashboard root.
type OverviewCard struct {
	Label string
	Href  string
	// Count is -1 when the collection could not be loaded.
	Count int
}

// OverviewView is the dashboard root state.
type OverviewView struct {
	User   domainauth.User
	Plan   billing.Plan
	Cards  []OverviewCard
	Notice string
}

// Overview renders the dashboard landing page.
func Overview(v OverviewView) g.Node {
	return html.Section(
		html.Class("overview"),
		html.H2(g.Textf("Welcome, %s", v.User.DisplayName())),
		html.P(html.Class("plan"), g.Text(planLabel(v.Plan)+" plan")),
		Alert(v.Notice),
		html.Ul(
			html.Class("cards"),
			g.Map(v.Cards, func(c OverviewCard) g.Node {
				count := "-"
				if c.Count >= 0 {
					count = strconv.Itoa(c.Count)
				}
				return html.Li(html.A(html.Href(c.Href),
					html.Strong(g.Text(count)),
					html.Span(g.Text(c.Label)),
				))
			}),
		),
	)
}

// ErrorPanel renders a failure in the content region.
func ErrorPanel(title, message string) g.Node {
	return html.Section(html.Class("error-panel"),
		html.H2(g.Text(title)),
		html.P(g.Text(message)),
	)
}

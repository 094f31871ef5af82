package pages

import (
	"time"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/http/ui/shell"
)

// BillingPanelID is the swap target for billing actions.
const BillingPanelID = "billing-panel"

// BillingView is the billing panel state. A nil Status means the fetch failed.
type BillingView struct {
	Base      string
	Status    *billing.BillingStatus
	Error     string
	CSRFToken string
}

// BillingPanel renders the subscription summary and the controls its status allows.
func BillingPanel(v BillingView) g.Node {
	if v.Status == nil {
		return html.Section(html.ID(BillingPanelID), html.Class("billing"),
			html.H2(g.Text("Billing")),
			Alert(orDefault(v.Error, "We couldn't load your subscription. Please try again.")),
			html.A(html.Href(v.Base+"/billing"), g.Text("Retry")),
		)
	}
	st := *v.Status
	acts := st.Actions()
	return html.Section(
		html.ID(BillingPanelID),
		html.Class("billing"),
		html.H2(g.Text("Billing")),
		Alert(v.Error),
		html.Dl(
			html.Dt(g.Text("Plan")), html.Dd(g.Text(planLabel(st.Plan))),
			html.Dt(g.Text("Status")), html.Dd(g.Text(statusLabel(st))),
			g.If(st.CurrentPeriodEnd != nil, g.Group{
				html.Dt(g.Text(periodLabel(st))), html.Dd(g.Text(formatDate(st.CurrentPeriodEnd))),
			}),
			g.If(st.TrialEndsAt != nil, g.Group{
				html.Dt(g.Text("Trial ends")), html.Dd(g.Text(formatDate(st.TrialEndsAt))),
			}),
		),
		html.Div(
			html.Class("billing-actions"),
			g.If(acts.ShowUpgrade, actionButton(v, "upgrade", "Upgrade to Pro")),
			g.If(acts.ShowCancel, actionButton(v, "cancel", "Cancel subscription")),
			g.If(acts.ShowResume, actionButton(v, "resume", "Resume subscription")),
			g.If(acts.ShowPortal, actionButton(v, "portal", "Manage payment details")),
		),
	)
}

func actionButton(v BillingView, action, label string) g.Node {
	path := v.Base + "/billing/" + action
	return html.Form(
		html.Method("post"),
		html.Action(path),
		g.Attr("hx-post", path),
		g.Attr("hx-target", "#"+BillingPanelID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		shell.CSRFField(v.CSRFToken),
		html.Button(html.Type("submit"), html.Class("btn btn-"+action), g.Text(label)),
	)
}

func planLabel(p billing.Plan) string {
	if p == billing.PlanPro {
		return "Pro"
	}
	return "Free"
}

func statusLabel(st billing.BillingStatus) string {
	switch {
	case st.CancelAtPeriodEnd:
		return "Cancels at period end"
	case st.Status == billing.StatusTrialing:
		return "Trial"
	case st.Status == billing.StatusActive:
		return "Active"
	case st.Status == billing.StatusCanceled:
		return "Canceled"
	default:
		return "No subscription"
	}
}

func periodLabel(st billing.BillingStatus) string {
	if st.CancelAtPeriodEnd {
		return "Access until"
	}
	return "Renews on"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2 Jan 2006")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

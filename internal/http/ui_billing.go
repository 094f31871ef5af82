package httpx

import (
	"errors"
	"net/http"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/http/ui/pages"
	"github.com/stagepass/portal/internal/service"
)

// Billing renders the subscription panel from a fresh status fetch.
// GET /dashboard/{role}/billing.
func (h *DashboardHandlers) Billing(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	p, err := h.billingPage(r, actor)
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}
	h.render(w, r, p)
}

func (h *DashboardHandlers) billingPage(r *http.Request, actor service.Actor) (pageOpts, error) {
	view := pages.BillingView{Base: base(actor), CSRFToken: GetCSRFToken(r)}
	st, err := h.Svc.Billing.FetchBilling(r.Context(), actor.Token)
	if err != nil {
		h.logger().WarnContext(r.Context(), "billing status fetch failed", "user_id", actor.User.ID, "error", err)
		view.Error = ErrorMessage(err)
	} else {
		view.Status = &st
	}
	return pageOpts{Title: "Billing", Content: pages.BillingPanel(view)}, err
}

// BillingAction runs one billing control.
// POST /dashboard/{role}/billing/{action}.
//
// upgrade and portal leave the portal for the hosted page; cancel and resume
// re-render the panel from the status fetched after the change.
func (h *DashboardHandlers) BillingAction(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	ctx := r.Context()
	reload := func() pageOpts {
		p, _ := h.billingPage(r, actor)
		return p
	}

	switch action := r.PathValue("action"); action {
	case "upgrade", "portal":
		open := h.Svc.Billing.Upgrade
		if action == "portal" {
			open = h.Svc.Billing.OpenPortal
		}
		target, err := open(ctx, actor)
		if err != nil {
			h.fail(w, r, err, reload)
			return
		}
		redirect(w, r, target)

	case "cancel", "resume":
		change := h.Svc.Billing.Cancel
		done := "Your subscription will end at the close of the current period."
		if action == "resume" {
			change = h.Svc.Billing.Resume
			done = "Your subscription has been resumed."
		}
		st, err := change(ctx, actor)
		switch {
		case errors.Is(err, service.ErrBillingRefresh):
			view := pages.BillingView{Base: base(actor), CSRFToken: GetCSRFToken(r), Error: refreshPendingMessage}
			h.render(w, r, pageOpts{
				Title:    "Billing",
				Content:  pages.BillingPanel(view),
				Fragment: pages.BillingPanel(view),
				Toast:    toast(refreshPendingMessage, toastSuccess),
			})
		case err != nil:
			h.fail(w, r, err, reload)
		default:
			panel := pages.BillingPanel(pages.BillingView{Base: base(actor), Status: &st, CSRFToken: GetCSRFToken(r)})
			h.render(w, r, pageOpts{
				Title:    "Billing",
				Content:  panel,
				Fragment: panel,
				Toast:    toast(endMessage(st, done), toastSuccess),
			})
		}

	default:
		http.NotFound(w, r)
	}
}

func endMessage(st billing.BillingStatus, fallback string) string {
	if st.CancelAtPeriodEnd && st.CurrentPeriodEnd != nil {
		return "Your subscription will end on " + st.CurrentPeriodEnd.UTC().Format("2 Jan 2006") + "."
	}
	return fallback
}

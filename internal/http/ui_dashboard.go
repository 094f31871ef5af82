package httpx

import (
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/domain/menu"
	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/http/ui/pages"
)

// overviewFanout bounds concurrent backend calls for the overview cards.
const overviewFanout = 4

// Overview renders the role's dashboard root with a count per collection.
// GET /dashboard/{role}.
//
// Collections load concurrently; one failing shows "-" on its card while the rest render.
// A rejected token anywhere ends the session.
func (h *DashboardHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	ctx := r.Context()
	kinds := resource.ForRole(actor.User.UserType)

	cards := make([]pages.OverviewCard, len(kinds))
	plan := actor.User.SubscriptionPlan
	var (
		mu     sync.Mutex
		failed bool
	)

	var eg errgroup.Group
	eg.SetLimit(overviewFanout)
	eg.Go(func() error {
		st, err := h.Svc.Billing.FetchBilling(ctx, actor.Token)
		if apierror.IsUnauthorized(err) {
			return err
		}
		if err == nil {
			plan = st.EffectivePlan()
		}
		return nil
	})
	for i, res := range kinds {
		cards[i] = pages.OverviewCard{Label: res.Label, Href: base(actor) + "/" + string(res.Kind), Count: -1}
		eg.Go(func() error {
			_, items, err := h.Svc.Resources.List(ctx, actor, string(res.Kind))
			if apierror.IsUnauthorized(err) {
				return err
			}
			if err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
				return nil
			}
			cards[i].Count = len(items)
			return nil
		})
	}
	if err := eg.Wait(); h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}

	view := pages.OverviewView{User: actor.User, Plan: plan, Cards: cards}
	if failed {
		view.Notice = "Some sections couldn't be loaded. Please try again."
	}
	h.render(w, r, pageOpts{Title: "Overview", Content: pages.Overview(view)})
}

// Dashboard sends a signed-in user to their role's dashboard.
// GET /dashboard.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	state, _ := SessionStateFromContext(r.Context())
	switch {
	case state.Authenticated():
		redirect(w, r, menu.DashboardPath(state.User.UserType))
	case state.Loading:
		renderLoading(w, r)
	default:
		redirectToLogin(w, r)
	}
}

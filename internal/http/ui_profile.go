package httpx

import (
	"net/http"

	"github.com/stagepass/portal/internal/http/ui/pages"
	"github.com/stagepass/portal/internal/service"
)

// Profile renders account details and the biography editor.
// GET /dashboard/{role}/profile.
func (h *DashboardHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	view, err := h.profileView(r, actor)
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}
	h.render(w, r, pageOpts{Title: "Profile", Content: pages.Profile(view)})
}

func (h *DashboardHandlers) profileView(r *http.Request, actor service.Actor) (pages.ProfileView, error) {
	view := pages.ProfileView{Base: base(actor), User: actor.User, CSRFToken: GetCSRFToken(r)}
	caps, err := h.Svc.Billing.Capabilities(r.Context(), actor)
	view.Locked = err != nil || !caps.Biography
	return view, err
}

// SaveProfile updates the biography.
// POST /dashboard/{role}/profile.
func (h *DashboardHandlers) SaveProfile(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	bio := r.PostFormValue("biography")
	view := pages.ProfileView{Base: base(actor), User: actor.User, Biography: bio, CSRFToken: GetCSRFToken(r)}

	err := h.Svc.Resources.UpdateBiography(r.Context(), actor, bio)
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}

	p := pageOpts{Title: "Profile"}
	switch {
	case err == nil:
		p.Toast = toast("Biography saved.", toastSuccess)
	case errorIsLocked(err):
		view.Locked = true
		p.Toast = toast(ErrorMessage(err), toastInfo)
		p.Status = formStatus(r, http.StatusForbidden)
	default:
		view.Fields = fieldErrors(err)
		p.Toast = toast(ErrorMessage(err), toastError)
		p.Status = formStatus(r, ErrorStatus(err))
	}
	p.Content = pages.Profile(view)
	p.Fragment = pages.BiographyForm(view)
	h.render(w, r, p)
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/http/ui/pages"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/service"
)

// maxUploadBytes caps a single multipart upload.
const maxUploadBytes = 20 << 20

// Resources lists one of the role's collections.
// GET /dashboard/{role}/{resource}.
func (h *DashboardHandlers) Resources(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	p, err := h.resourcePage(r, actor, r.PathValue("resource"))
	if err != nil {
		if h.forceLogoutIfUnauthorized(w, r, err) {
			return
		}
		if ErrorStatus(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
	}
	h.render(w, r, p)
}

// resourcePage loads a collection view. A failed list still yields a page carrying the error.
func (h *DashboardHandlers) resourcePage(r *http.Request, actor service.Actor, kind string) (pageOpts, error) {
	return h.resourcePageWith(r, actor, kind, nil)
}

// resourcePageWith is resourcePage with a hook to refill the create form.
func (h *DashboardHandlers) resourcePageWith(r *http.Request, actor service.Actor, kind string, fill func(*pages.ResourceView)) (pageOpts, error) {
	res, items, err := h.Svc.Resources.List(r.Context(), actor, kind)
	if res.Kind == "" {
		return pageOpts{Title: "Not found", Content: pages.ErrorPanel("Not found", ErrorMessage(err))}, err
	}
	view := pages.ResourceView{Base: base(actor), Resource: res, Items: items, CSRFToken: GetCSRFToken(r)}
	if fill != nil {
		fill(&view)
	}
	page := func() pageOpts { return pageOpts{Title: res.Label, Content: pages.ResourceList(view)} }
	if err != nil {
		h.logger().WarnContext(r.Context(), "resource list failed", "kind", kind, "error", err)
		view.Error = ErrorMessage(err)
		return page(), err
	}
	if res.Uploadable {
		caps, capErr := h.Svc.Billing.Capabilities(r.Context(), actor)
		if capErr != nil {
			return page(), capErr
		}
		view.Remaining = remainingSlots(res, caps, len(items))
	}
	return page(), nil
}

func remainingSlots(res resource.Resource, caps billing.Capabilities, existing int) int {
	slots := caps.PhotoSlots
	if res.Kind == resource.KindTracks {
		slots = caps.AudioSlots
	}
	if slots == billing.Unlimited {
		return billing.Unlimited
	}
	return max(slots-existing, 0)
}

// DeleteResource removes one record and re-renders the list.
// DELETE /dashboard/{role}/{resource}/{id}.
func (h *DashboardHandlers) DeleteResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	kind := r.PathValue("resource")
	reload := func() pageOpts {
		p, _ := h.resourcePage(r, actor, kind)
		return p
	}
	if err := h.Svc.Resources.Delete(r.Context(), actor, kind, r.PathValue("id")); err != nil {
		h.fail(w, r, err, reload)
		return
	}
	h.afterResourceChange(w, r, actor, kind, "Deleted.")
}

// SubmitResource routes a collection post to the upload or create flow.
// POST /dashboard/{role}/{resource}.
func (h *DashboardHandlers) SubmitResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	if res, ok := resource.Lookup(actor.User.UserType, r.PathValue("resource")); ok && res.Uploadable {
		h.UploadResource(w, r)
		return
	}
	h.CreateResource(w, r)
}

// UploadResource stores a file in an uploadable collection.
func (h *DashboardHandlers) UploadResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	kind := r.PathValue("resource")
	reload := func() pageOpts {
		p, _ := h.resourcePage(r, actor, kind)
		return p
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "Choose a file to upload."
		if errors.As(err, &tooLarge) {
			msg = "That file is too large."
		}
		h.failMessage(w, r, msg, reload)
		return
	}
	defer file.Close()
	if hdr.Size > maxUploadBytes {
		// The form may have been parsed before MaxBytesReader was installed.
		h.failMessage(w, r, "That file is too large.", reload)
		return
	}

	_, err = h.Svc.Resources.Upload(r.Context(), actor, kind, ports.Upload{
		Field:       "file",
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.fail(w, r, err, reload)
		return
	}
	h.afterResourceChange(w, r, actor, kind, "Uploaded "+hdr.Filename+".")
}

// CreateResource adds a record from the collection page's form.
func (h *DashboardHandlers) CreateResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	kind := r.PathValue("resource")
	reload := func() pageOpts {
		p, _ := h.resourcePage(r, actor, kind)
		return p
	}
	if err := r.ParseForm(); err != nil {
		h.failMessage(w, r, "That form could not be read.", reload)
		return
	}
	draft := draftFromForm(r)

	item, err := h.Svc.Resources.Create(r.Context(), actor, kind, draft)
	if fields := fieldErrors(err); len(fields) > 0 {
		p, _ := h.resourcePageWith(r, actor, kind, func(v *pages.ResourceView) {
			v.Draft = draft
			v.Fields = fields
		})
		p.Fragment = p.Content
		p.Toast = toast(ErrorMessage(err), toastError)
		p.Status = formStatus(r, ErrorStatus(err))
		h.render(w, r, p)
		return
	}
	if err != nil {
		h.fail(w, r, err, reload)
		return
	}
	title := item.Title
	if title == "" {
		title = draft.Title
	}
	h.afterResourceChange(w, r, actor, kind, "Added "+title+".")
}

// EditResource renders the editor for one record.
// GET /dashboard/{role}/{resource}/{id}.
func (h *DashboardHandlers) EditResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	id := r.PathValue("id")
	res, item, err := h.Svc.Resources.Get(r.Context(), actor, r.PathValue("resource"), id)
	if err != nil {
		if h.forceLogoutIfUnauthorized(w, r, err) {
			return
		}
		if ErrorStatus(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		h.logger().WarnContext(r.Context(), "resource fetch failed", "kind", res.Kind, "id", id, "error", err)
		h.render(w, r, pageOpts{
			Title:   res.Label,
			Content: pages.ErrorPanel("Unavailable", ErrorMessage(err)),
			Status:  ErrorStatus(err),
		})
		return
	}
	view := pages.ResourceEditView{
		Base:      base(actor),
		Resource:  res,
		ID:        id,
		Draft:     resource.Draft{Title: item.Title, Details: item.String("details")},
		CSRFToken: GetCSRFToken(r),
	}
	h.render(w, r, pageOpts{Title: "Edit " + res.Label, Content: pages.ResourceEdit(view)})
}

// UpdateResource saves the editor and returns to the collection.
// POST /dashboard/{role}/{resource}/{id}.
func (h *DashboardHandlers) UpdateResource(w http.ResponseWriter, r *http.Request) {
	actor := mustActor(r)
	kind, id := r.PathValue("resource"), r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	draft := draftFromForm(r)

	_, err := h.Svc.Resources.Update(r.Context(), actor, kind, id, draft)
	if err == nil {
		redirect(w, r, base(actor)+"/"+kind)
		return
	}
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}
	res, ok := resource.Lookup(actor.User.UserType, kind)
	if !ok || ErrorStatus(err) == http.StatusNotFound {
		http.NotFound(w, r)
		return
	}

	status := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "resource update failed", "kind", kind, "id", id, "error", err)
	}
	view := pages.ResourceEditView{
		Base:      base(actor),
		Resource:  res,
		ID:        id,
		Draft:     draft,
		Fields:    fieldErrors(err),
		CSRFToken: GetCSRFToken(r),
	}
	if len(view.Fields) == 0 {
		view.Error = ErrorMessage(err)
	}
	form := pages.ResourceEdit(view)
	h.render(w, r, pageOpts{
		Title:    "Edit " + res.Label,
		Content:  form,
		Fragment: form,
		Toast:    toast(ErrorMessage(err), toastError),
		Status:   formStatus(r, status),
	})
}

func draftFromForm(r *http.Request) resource.Draft {
	return resource.Draft{Title: r.PostFormValue("title"), Details: r.PostFormValue("details")}
}

func (h *DashboardHandlers) afterResourceChange(w http.ResponseWriter, r *http.Request, actor service.Actor, kind, msg string) {
	p, err := h.resourcePage(r, actor, kind)
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}
	p.Fragment = p.Content
	p.Toast = toast(msg, toastSuccess)
	h.render(w, r, p)
}

// failMessage is fail for request problems caught before any service call.
func (h *DashboardHandlers) failMessage(w http.ResponseWriter, r *http.Request, msg string, reload func() pageOpts) {
	if IsHTMX(r) {
		triggerToast(w, msg, toastError)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	p := reload()
	p.Toast = toast(msg, toastError)
	p.Status = http.StatusBadRequest
	h.render(w, r, p)
}

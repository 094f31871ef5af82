package httpx

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/http/ui/pages"
	"github.com/stagepass/portal/internal/ports"
)

// ContactSender is the contact form's service.
type ContactSender interface {
	Send(ctx context.Context, msg ports.ContactMessage) error
}

// ContactHandlers serves the public contact form.
type ContactHandlers struct {
	Svc    ContactSender
	Logger *slog.Logger
}

func (h *ContactHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Page renders an empty contact form.
// GET /contact.
func (h *ContactHandlers) Page(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, pages.ContactView{})
}

// Submit validates and sends a contact message.
// POST /contact.
func (h *ContactHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := pages.ContactView{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	err := h.Svc.Send(r.Context(), ports.ContactMessage{
		Name: view.Name, Email: view.Email, Subject: view.Subject, Message: view.Message,
	})
	switch {
	case err == nil:
		triggerToast(w, "Thanks! Your message has been sent.", toastSuccess)
		h.write(w, r, http.StatusOK, pages.ContactView{Sent: true})
	case apperrors.IsValidation(err):
		view.Fields = fieldErrors(err)
		triggerToast(w, ErrorMessage(err), toastError)
		h.write(w, r, formStatus(r, http.StatusUnprocessableEntity), view)
	default:
		h.logger().WarnContext(r.Context(), "contact send failed", "error", err)
		view.Fields = fieldErrors(err)
		triggerToast(w, ErrorMessage(err), toastError)
		h.write(w, r, formStatus(r, ErrorStatus(err)), view)
	}
}

func (h *ContactHandlers) write(w http.ResponseWriter, r *http.Request, status int, view pages.ContactView) {
	view.CSRFToken = GetCSRFToken(r)
	node := pages.ContactPage(view)
	if IsHTMX(r) {
		node = pages.ContactForm(view)
	}
	if err := writeNode(w, status, node); err != nil {
		h.logger().WarnContext(r.Context(), "render contact failed", "error", err)
	}
}

package httpx

import (
	"context"
	"log/slog"
	"net/http"

	g "maragu.dev/gomponents"

	"github.com/stagepass/portal/internal/apierror"
	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/menu"
	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/http/ui/shell"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/service"
)

// SessionService is the slice of AuthService the dashboard needs.
type SessionService interface {
	SessionResolver
	Logout(ctx context.Context, sessionID string) error
}

// BillingService drives the billing panel.
type BillingService interface {
	FetchBilling(ctx context.Context, token string) (billing.BillingStatus, error)
	Upgrade(ctx context.Context, actor service.Actor) (string, error)
	OpenPortal(ctx context.Context, actor service.Actor) (string, error)
	Cancel(ctx context.Context, actor service.Actor) (billing.BillingStatus, error)
	Resume(ctx context.Context, actor service.Actor) (billing.BillingStatus, error)
	Capabilities(ctx context.Context, actor service.Actor) (billing.Capabilities, error)
}

// ResourceService drives the collection pages and the profile editor.
type ResourceService interface {
	List(ctx context.Context, actor service.Actor, kind string) (resource.Resource, []resource.Item, error)
	Delete(ctx context.Context, actor service.Actor, kind, id string) error
	Upload(ctx context.Context, actor service.Actor, kind string, file ports.Upload) (resource.Item, error)
	Get(ctx context.Context, actor service.Actor, kind, id string) (resource.Resource, resource.Item, error)
	Create(ctx context.Context, actor service.Actor, kind string, in resource.Draft) (resource.Item, error)
	Update(ctx context.Context, actor service.Actor, kind, id string, in resource.Draft) (resource.Item, error)
	UpdateBiography(ctx context.Context, actor service.Actor, bio string) error
}

// DashboardServices groups the services behind the role dashboards.
type DashboardServices struct {
	Auth      SessionService
	Billing   BillingService
	Resources ResourceService
}

// DashboardHandlers serves every page under /dashboard/<role>.
type DashboardHandlers struct {
	Svc     DashboardServices
	Menu    *menu.Registry
	Cookies Cookies
	Logger  *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// pageOpts describes one dashboard response.
type pageOpts struct {
	Title string
	// Content fills the shell's content region on full loads and htmx navigation.
	Content g.Node
	// Fragment, when set, is what an htmx form post swaps instead of Content.
	Fragment g.Node
	Toast    *shell.Toast
	Status   int
}

func toast(message, typ string) *shell.Toast {
	if message == "" {
		return nil
	}
	return &shell.Toast{Message: message, Type: typ}
}

// render writes a dashboard page. htmx requests receive only the fragment (or content)
// plus their toast as an Hx-Trigger event; everything else gets the full shell.
func (h *DashboardHandlers) render(w http.ResponseWriter, r *http.Request, p pageOpts) {
	if WantsPartial(r) {
		if p.Toast != nil {
			triggerToast(w, p.Toast.Message, p.Toast.Type)
		}
		body := p.Fragment
		if body == nil {
			body = p.Content
			SetHXTrigger(w, "nav:activate", map[string]string{"path": r.URL.RequestURI()})
		}
		h.write(w, r, p.Status, body)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	role := actor.User.UserType
	frame := shell.Frame(shell.Page{
		Title: p.Title,
		User:  actor.User,
		Nav: shell.Nav{
			Entries: h.Menu.GetMenu(string(role)),
			Current: r.URL.RequestURI(),
			Root:    h.Menu.Root(role),
		},
		CSRFToken: GetCSRFToken(r),
		Mobile:    shell.IsMobileRequest(r.Header),
		Toast:     p.Toast,
	}, p.Content)
	h.write(w, r, p.Status, frame)
}

// fail answers a failed action without swapping: the status and toast only.
// Non-htmx callers get the full page from reload instead.
func (h *DashboardHandlers) fail(w http.ResponseWriter, r *http.Request, err error, reload func() pageOpts) {
	if h.forceLogoutIfUnauthorized(w, r, err) {
		return
	}
	status := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "dashboard action failed", "path", r.URL.Path, "error", err)
	}
	if IsHTMX(r) {
		triggerToast(w, ErrorMessage(err), toastError)
		w.WriteHeader(status)
		return
	}
	p := reload()
	p.Toast = toast(ErrorMessage(err), toastError)
	p.Status = status
	h.render(w, r, p)
}

func (h *DashboardHandlers) write(w http.ResponseWriter, r *http.Request, status int, n g.Node) {
	if err := writeNode(w, status, n); err != nil {
		h.logger().WarnContext(r.Context(), "render failed", "path", r.URL.Path, "error", err)
	}
}

// forceLogoutIfUnauthorized ends the session when the backend rejected its token.
func (h *DashboardHandlers) forceLogoutIfUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apierror.IsUnauthorized(err) {
		return false
	}
	if id := sessionID(r); id != "" && h.Svc.Auth != nil {
		if logoutErr := h.Svc.Auth.Logout(r.Context(), id); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "forced logout failed", "error", logoutErr)
		}
	}
	h.Cookies.Clear(w, r, sessionCookieName)
	redirectToLogin(w, r)
	return true
}

// base is the dashboard root for the signed-in actor.
func base(actor service.Actor) string {
	return menu.DashboardPath(actor.User.UserType)
}

// mustActor returns the actor placed in context by RoleShell.
func mustActor(r *http.Request) service.Actor {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		panic("dashboard handler reached without a signed-in actor")
	}
	return actor
}

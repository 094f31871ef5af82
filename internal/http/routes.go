package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/menu"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth      AuthServiceInterface
	Billing   BillingService
	Resources ResourceService
	Contact   ContactSender
	Menu      *menu.Registry

	Cookies     Cookies
	Limiter     *SignInLimiter
	// Compression is applied when non-nil.
	Compression *CompressionConfig
	Logger      *slog.Logger
}

// NewRouter builds the portal's handler tree.
//
// Every role gets the same subtree under /dashboard/<role>, gated by RoleShell.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := services.Menu
	if registry == nil {
		registry = menu.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	session := ResolveSession(services.Auth, services.Cookies)

	auth := &AuthHandlers{
		Svc:     services.Auth,
		Cookies: services.Cookies,
		Limiter: services.Limiter,
		Logger:  logger,
	}
	registerAuthRoutes(mux, auth, session)

	contact := &ContactHandlers{Svc: services.Contact, Logger: logger}
	mux.HandleFunc("GET /contact", contact.Page)
	mux.HandleFunc("POST /contact", contact.Submit)

	dash := &DashboardHandlers{
		Svc: DashboardServices{
			Auth:      services.Auth,
			Billing:   services.Billing,
			Resources: services.Resources,
		},
		Menu:    registry,
		Cookies: services.Cookies,
		Logger:  logger,
	}
	mux.Handle("GET /{$}", http.RedirectHandler(menu.DashboardBase, http.StatusSeeOther))
	mux.Handle("GET /dashboard", session(http.HandlerFunc(Dashboard)))
	for _, role := range domainauth.Roles() {
		registerRoleRoutes(mux, dash, role, session)
	}

	mws := []Middleware{Recover(logger), RequestID(), Logging(logger)}
	if services.Compression != nil {
		mws = append(mws, Compression(*services.Compression))
	}
	mws = append(mws, CSRFProtection(CSRFConfig{CookieDomain: services.Cookies.Domain, Secure: services.Cookies.Secure}))
	return Chain(mux, mws...)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, session Middleware) {
	mux.Handle("GET /signin", session(http.HandlerFunc(h.SignInPage)))
	mux.HandleFunc("POST /signin", h.SignIn)
	mux.HandleFunc("POST /auth/logout", h.Logout)
}

// registerRoleRoutes wires one role's dashboard subtree.
func registerRoleRoutes(mux *http.ServeMux, h *DashboardHandlers, role domainauth.Role, session Middleware) {
	gate := RoleShell(role)
	wrap := func(fn http.HandlerFunc) http.Handler { return session(gate(fn)) }
	base := menu.DashboardPath(role)

	mux.Handle("GET "+base+"/{$}", wrap(h.Overview))
	mux.Handle("GET "+base, wrap(h.Overview))
	mux.Handle("GET "+base+"/billing", wrap(h.Billing))
	mux.Handle("POST "+base+"/billing/{action}", wrap(h.BillingAction))
	mux.Handle("GET "+base+"/profile", wrap(h.Profile))
	mux.Handle("POST "+base+"/profile", wrap(h.SaveProfile))
	mux.Handle("GET "+base+"/{resource}", wrap(h.Resources))
	mux.Handle("POST "+base+"/{resource}", wrap(h.SubmitResource))
	mux.Handle("GET "+base+"/{resource}/{id}", wrap(h.EditResource))
	mux.Handle("POST "+base+"/{resource}/{id}", wrap(h.UpdateResource))
	mux.Handle("DELETE "+base+"/{resource}/{id}", wrap(h.DeleteResource))
}

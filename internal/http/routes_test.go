package httpx

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stagepass/portal/internal/apierror"
	domainauth "github.com/stagepass/portal/internal/domain/auth"
	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/mocks"
	authmocks "github.com/stagepass/portal/internal/mocks/auth"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/service"
)

const (
	testSessionID = "sess-1"
	testCSRF      = "csrf-tok"
)

type routerHarness struct {
	handler  http.Handler
	backend  *authmocks.MockBackendAuth
	sessions ports.SessionStore
	gateway  *mocks.MockBillingGateway
	client   *mocks.MockResourceClient
	contact  *mocks.MockContactSender
}

type harnessOpts struct {
	sessions ports.SessionStore
	guard    ports.InflightGuard
}

func newRouterHarness(t *testing.T, opts harnessOpts) *routerHarness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &routerHarness{
		backend:  authmocks.NewMockBackendAuth(),
		sessions: opts.sessions,
		gateway:  mocks.NewMockBillingGateway(ctrl),
		client:   mocks.NewMockResourceClient(ctrl),
		contact:  mocks.NewMockContactSender(ctrl),
	}
	if h.sessions == nil {
		h.sessions = authmocks.NewMemorySessionStore()
	}

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Deps: service.AuthDeps{
			Backend:  h.backend,
			Sessions: h.sessions,
			Roles:    authmocks.StaticRoleMapper{},
		},
	})
	billingSvc := service.NewBillingService(service.BillingServiceOptions{Gateway: h.gateway, Guard: opts.guard})
	resourceSvc := service.NewResourceService(service.ResourceServiceOptions{
		Backends:     service.ResourceBackends{Client: h.client},
		Capabilities: billingSvc,
	})

	h.handler = NewRouter(RouterServices{
		Auth:      authSvc,
		Billing:   billingSvc,
		Resources: resourceSvc,
		Contact:   service.NewContactService(h.contact),
	})
	return h
}

func (h *routerHarness) signIn(t *testing.T, role domainauth.Role) {
	t.Helper()
	now := time.Now()
	require.NoError(t, h.sessions.Save(context.Background(), domainauth.Session{
		ID: testSessionID,
		User: domainauth.User{
			ID:               "user-1",
			Username:         "someone",
			Email:            "someone@example.com",
			UserType:         role,
			SubscriptionPlan: domainauth.PlanFree,
		},
		Token:       "token-1",
		CreatedAt:   now,
		RefreshedAt: now,
		ExpiresAt:   now.Add(time.Hour),
	}))
}

func (h *routerHarness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// withSession attaches the session and CSRF cookies plus the htmx CSRF header.
func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: testSessionID})
	return withCSRF(req)
}

func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	req.Header.Set(csrfHeaderName, testCSRF)
	return req
}

func htmxRequest(req *http.Request) *http.Request {
	req.Header.Set("Hx-Request", "true")
	return req
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type failingStore struct{}

func (failingStore) Save(context.Context, domainauth.Session) error { return errors.New("redis down") }
func (failingStore) Get(context.Context, string) (domainauth.Session, error) {
	return domainauth.Session{}, errors.New("redis down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("redis down") }

type busyGuard struct{}

func (busyGuard) Do(context.Context, string, func(context.Context) error) error { return ports.ErrInFlight }

func TestRouter_Healthz(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})

	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = h.do(httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_SignedOutRedirectsToSignIn(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})

	rec := h.do(httptest.NewRequest(http.MethodGet, "/dashboard/artist/billing", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin?redirect_uri=%2Fdashboard%2Fartist%2Fbilling", rec.Header().Get("Location"))
}

func TestRouter_RoleMismatchRedirectsToDashboard(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/venue/billing", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRouter_DashboardSendsUserToOwnRole(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RolePhotographer)

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/photographer", rec.Header().Get("Location"))
}

func TestRouter_UnresolvedSessionShowsLoadingFrame(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{sessions: failingStore{}})

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/artist", nil)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hx-trigger="load delay:2s"`)
	assert.NotContains(t, body, `id="sidebar"`)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, sessionCookieName, c.Name, "a loading session keeps its cookie")
	}
}

func TestRouter_UnresolvedSessionRefusesMutation(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{sessions: failingStore{}})

	req := htmxRequest(withSession(httptest.NewRequest(http.MethodPost, "/dashboard/artist/billing/cancel", nil)))
	rec := h.do(req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "showToast")
}

func TestRouter_SignInMapsBackendFieldErrors(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.backend.LoginFunc = func(context.Context, ports.Credentials) (ports.LoginResult, error) {
		return ports.LoginResult{}, &apierror.Error{
			Status: http.StatusBadRequest,
			Fields: map[string]string{"email": "Please enter a valid email"},
		}
	}

	req := htmxRequest(withCSRF(formRequest("/signin", url.Values{
		"email":    {"someone@example.com"},
		"password": {"123456"},
	})))
	rec := h.do(req)

	assert.Equal(t, http.StatusOK, rec.Code, "htmx form re-renders swap with 200")
	assert.Equal(t, 1, h.backend.LoginCalls)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Please enter a valid email")
	body := rec.Body.String()
	assert.Contains(t, body, "Please enter a valid email")
	assert.Equal(t, 1, strings.Count(body, `class="field-error"`), "only the email field carries an error")
}

func TestRouter_SignInLocalValidationSkipsBackend(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})

	rec := h.do(withCSRF(formRequest("/signin", url.Values{
		"email":    {"bad"},
		"password": {"123456"},
	})))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, h.backend.LoginCalls)
}

func TestRouter_SignInStartsSession(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})

	rec := h.do(withCSRF(formRequest("/signin", url.Values{
		"email":        {"artist@example.com"},
		"password":     {"secret1"},
		"redirect_uri": {"/dashboard/artist/photos"},
	})))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/artist/photos", rec.Header().Get("Location"))
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)
}

func TestRouter_LogoutClearsSession(t *testing.T) {
	store := authmocks.NewMemorySessionStore()
	h := newRouterHarness(t, harnessOpts{sessions: store})
	h.signIn(t, domainauth.RoleArtist)

	rec := h.do(withSession(httptest.NewRequest(http.MethodPost, "/auth/logout", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Equal(t, 0, store.Len())
}

func TestRouter_ContactEmptySubjectIsNotSent(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.contact.EXPECT().SendContact(gomock.Any(), gomock.Any()).Times(0)

	rec := h.do(withCSRF(formRequest("/contact", url.Values{
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"subject": {""},
		"message": {"Hello"},
	})))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Subject is required.")
}

func TestRouter_ContactSendsValidMessage(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.contact.EXPECT().SendContact(gomock.Any(), ports.ContactMessage{
		Name: "Sam", Email: "sam@example.com", Subject: "Booking", Message: "Hello",
	}).Return(nil)

	rec := h.do(htmxRequest(withCSRF(formRequest("/contact", url.Values{
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"subject": {"Booking"},
		"message": {"Hello"},
	}))))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Thanks! Your message has been sent.")
}

func TestRouter_CSRFRejectsTokenlessPost(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})

	rec := h.do(formRequest("/contact", url.Values{"subject": {"Hi"}}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_BillingCancelInFlight(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{guard: busyGuard{}})
	h.signIn(t, domainauth.RoleArtist)

	req := htmxRequest(withSession(httptest.NewRequest(http.MethodPost, "/dashboard/artist/billing/cancel", nil)))
	rec := h.do(req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), inFlightMessage)
	assert.Empty(t, rec.Body.String(), "a failed action leaves the panel as it was")
}

func TestRouter_BillingCancelRendersFreshStatus(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	end := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	gomock.InOrder(
		h.gateway.EXPECT().Status(gomock.Any(), "token-1").
			Return(billing.BillingStatus{Plan: billing.PlanPro, Status: billing.StatusActive, CurrentPeriodEnd: &end}, nil),
		h.gateway.EXPECT().Cancel(gomock.Any(), "token-1").Return(nil),
		h.gateway.EXPECT().Status(gomock.Any(), "token-1").
			Return(billing.BillingStatus{
				Plan: billing.PlanPro, Status: billing.StatusActive, CurrentPeriodEnd: &end, CancelAtPeriodEnd: true,
			}, nil),
	)

	req := htmxRequest(withSession(httptest.NewRequest(http.MethodPost, "/dashboard/artist/billing/cancel", nil)))
	rec := h.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "30 Nov 2026")
	assert.Contains(t, rec.Body.String(), `id="`+"billing-panel"+`"`)
}

func TestRouter_UploadAtLimitIsRefused(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	h.gateway.EXPECT().Status(gomock.Any(), "token-1").
		Return(billing.BillingStatus{Plan: billing.PlanFree, Status: billing.StatusNone}, nil)
	h.client.EXPECT().List(gomock.Any(), "token-1", gomock.Any()).
		Return([]resource.Item{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil)
	h.client.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "stage.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dashboard/artist/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.do(htmxRequest(withSession(req)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Upgrade to Pro for more.")
}

func TestRouter_UnauthorizedBackendForcesLogout(t *testing.T) {
	store := authmocks.NewMemorySessionStore()
	h := newRouterHarness(t, harnessOpts{sessions: store})
	h.signIn(t, domainauth.RoleArtist)
	h.gateway.EXPECT().Status(gomock.Any(), "token-1").
		Return(billing.BillingStatus{}, &apierror.Error{Status: http.StatusUnauthorized})

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/artist/billing", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/signin?redirect_uri="))
	assert.Equal(t, 0, store.Len())
}

func TestRouter_UnknownResourceIsNotFound(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleJournalist)

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/journalist/photos", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OverviewCountsCollections(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	h.gateway.EXPECT().Status(gomock.Any(), "token-1").
		Return(billing.BillingStatus{Plan: billing.PlanPro, Status: billing.StatusActive}, nil)
	h.client.EXPECT().List(gomock.Any(), "token-1", gomock.Any()).Times(3).
		DoAndReturn(func(_ context.Context, _ string, res resource.Resource) ([]resource.Item, error) {
			switch res.Kind {
			case resource.KindPhotos:
				return []resource.Item{{ID: "1"}, {ID: "2"}}, nil
			case resource.KindTracks:
				return nil, &apierror.Error{Status: http.StatusBadGateway}
			default:
				return []resource.Item{}, nil
			}
		})

	rec := h.do(htmxRequest(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/artist", nil))))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<strong>2</strong><span>Photos</span>`)
	assert.Contains(t, body, `<strong>-</strong><span>Tracks</span>`)
	assert.Contains(t, body, `<strong>0</strong><span>Gigs</span>`)
	assert.Contains(t, body, "Pro plan")
	assert.Contains(t, body, "Some sections couldn&#39;t be loaded.")
}

func TestRouter_CreateGigRefreshesList(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	gomock.InOrder(
		h.client.EXPECT().Create(gomock.Any(), "token-1", gomock.Any(), resource.Draft{Title: "Club night", Details: "Doors at 8"}).
			Return(resource.Item{ID: "g1", Title: "Club night"}, nil),
		h.client.EXPECT().List(gomock.Any(), "token-1", gomock.Any()).
			Return([]resource.Item{{ID: "g1", Title: "Club night"}}, nil),
	)

	req := formRequest("/dashboard/artist/gigs", url.Values{"title": {"Club night"}, "details": {"Doors at 8"}})
	rec := h.do(htmxRequest(withSession(req)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Hx-Trigger"), "Added Club night.")
	assert.Contains(t, rec.Body.String(), `href="/dashboard/artist/gigs/g1"`)
}

func TestRouter_CreateWithoutTitleKeepsForm(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	h.client.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	h.client.EXPECT().List(gomock.Any(), "token-1", gomock.Any()).Return([]resource.Item{}, nil)

	req := formRequest("/dashboard/artist/gigs", url.Values{"title": {" "}, "details": {"Doors at 8"}})
	rec := h.do(htmxRequest(withSession(req)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required.")
	assert.Contains(t, rec.Body.String(), "Doors at 8")
}

func TestRouter_EditThenSaveArticle(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleJournalist)
	h.client.EXPECT().Get(gomock.Any(), "token-1", gomock.Any(), "a1").
		Return(resource.Item{ID: "a1", Title: "Festival recap"}, nil)
	h.client.EXPECT().Update(gomock.Any(), "token-1", gomock.Any(), "a1", resource.Draft{Title: "Festival recap, day two"}).
		Return(resource.Item{ID: "a1"}, nil)

	rec := h.do(htmxRequest(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/journalist/articles/a1", nil))))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Festival recap"`)

	req := formRequest("/dashboard/journalist/articles/a1", url.Values{"title": {"Festival recap, day two"}})
	rec = h.do(htmxRequest(withSession(req)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/dashboard/journalist/articles", rec.Header().Get("Hx-Redirect"))
}

func TestRouter_PhotosAreNotEditable(t *testing.T) {
	h := newRouterHarness(t, harnessOpts{})
	h.signIn(t, domainauth.RoleArtist)
	h.client.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	rec := h.do(withSession(httptest.NewRequest(http.MethodGet, "/dashboard/artist/photos/p1", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

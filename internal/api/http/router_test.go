package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/api/http/handlers"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/backend"
	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/domain"
	"github.com/spec-kit/pos-frontend/internal/observability"
	"github.com/spec-kit/pos-frontend/internal/service"
	"github.com/spec-kit/pos-frontend/internal/session"
)

const routerSecret = "router-secret"

type testApp struct {
	app     *fiber.App
	session *session.Session
	store   *session.MemoryStore
	tokens  *auth.TokenManager
	backend *fakeSalesBackend
}

type fakeSalesBackend struct {
	loginToken    string
	profileStatus int
}

func (f *fakeSalesBackend) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	switch r.URL.Path {
	case "/login":
		if f.loginToken == "" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": f.loginToken})
	case "/profile":
		if f.profileStatus != 0 {
			w.WriteHeader(f.profileStatus)
			return
		}
		_, _ = w.Write([]byte(`{"name":"Ana","email":"ana@pos.test","role":"vendedor"}`))
	default:
		w.WriteHeader(nethttp.StatusNotFound)
	}
}

func newTestApp(t *testing.T, storedToken string, restore bool) *testApp {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics("pos_router_test")

	fake := &fakeSalesBackend{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tokens := auth.NewTokenManager(routerSecret, 60)
	store := session.NewMemoryStore()
	if storedToken != "" {
		require.NoError(t, store.Save(context.Background(), storedToken))
	}
	sess := session.New(store, tokens, nil, logger)
	if restore {
		sess.Restore(context.Background())
	}

	authService := service.NewAuthService(sess, backend.NewClient(config.BackendConfig{SalesURL: srv.URL, TimeoutSeconds: 2}), logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("pos", "test", sess, nil),
		Auth:    handlers.NewAuthHandler(authService),
		Session: handlers.NewSessionHandler(sess),
		Areas:   handlers.NewAreaHandler(),
		Profile: handlers.NewProfileHandler(authService),
		Guard:   auth.NewRouteGuard(sess, metrics),
		Metrics: metrics.Handler(),
	})

	return &testApp{app: app, session: sess, store: store, tokens: tokens, backend: fake}
}

func (ta *testApp) issue(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := ta.tokens.GenerateToken("u-1", "op@pos.test", role, "Operador")
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := auth.NewTokenManager(routerSecret, 60).GenerateToken("u-1", "op@pos.test", role, "Operador")
	require.NoError(t, err)
	return token
}

func (ta *testApp) do(t *testing.T, req *nethttp.Request) *nethttp.Response {
	t.Helper()
	resp, err := ta.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) get(t *testing.T, path string) *nethttp.Response {
	return ta.do(t, httptest.NewRequest(nethttp.MethodGet, path, nil))
}

func decodeData(t *testing.T, resp *nethttp.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload), string(body))
	return payload.Data
}

func TestAreasWhileLoading(t *testing.T) {
	ta := newTestApp(t, "", false)

	resp := ta.get(t, "/admin")
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "loading", decodeData(t, resp)["status"])
}

func TestNoStoredTokenRedirectsToLogin(t *testing.T) {
	ta := newTestApp(t, "", true)

	resp := ta.get(t, "/vendedor")
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestConsultantDeniedFromAdmin(t *testing.T) {
	ta := newTestApp(t, tokenFor(t, domain.RoleConsultor), true)

	resp := ta.get(t, "/admin/products")
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard-selector", resp.Header.Get("Location"))

	resp = ta.get(t, "/dashboard-selector")
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/consultor", resp.Header.Get("Location"))

	resp = ta.get(t, "/consultor/reports")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, "consultor", data["area"])
	assert.Equal(t, "reports", data["section"])
}

func TestAdminReachesEveryArea(t *testing.T) {
	ta := newTestApp(t, tokenFor(t, domain.RoleAdmin), true)

	for _, path := range []string{"/admin", "/vendedor", "/vendedor/sales/new", "/consultor"} {
		resp := ta.get(t, path)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode, path)
	}

	resp := ta.get(t, "/dashboard-selector")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	choices := decodeData(t, resp)["choices"].([]any)
	assert.Len(t, choices, 3)
}

func TestSellerWithoutRequiredRole(t *testing.T) {
	ta := newTestApp(t, tokenFor(t, domain.RoleVendedor), true)

	resp := ta.get(t, "/perfil")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", decodeData(t, resp)["name"])
}

func TestExpiredStoredTokenIsDiscarded(t *testing.T) {
	issued := time.Now().Add(-3 * time.Hour)
	expired, _, err := auth.NewTokenManager(routerSecret, 60, auth.WithClock(func() time.Time { return issued })).
		GenerateToken("u-1", "op@pos.test", domain.RoleAdmin, "")
	require.NoError(t, err)
	ta := newTestApp(t, expired, true)

	resp := ta.get(t, "/admin")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, ok, _ := ta.store.Read(context.Background())
	assert.False(t, ok)
}

func TestFormLoginFlow(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.backend.loginToken = ta.issue(t, domain.RoleVendedor)

	form := url.Values{"email": {"op@pos.test"}, "password": {"secreto"}}
	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := ta.do(t, req)
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard-selector", resp.Header.Get("Location"))

	stored, ok, _ := ta.store.Read(context.Background())
	assert.True(t, ok)
	assert.Equal(t, ta.backend.loginToken, stored)

	resp = ta.get(t, "/vendedor")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = ta.get(t, "/logout")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, ok, _ = ta.store.Read(context.Background())
	assert.False(t, ok)

	resp = ta.get(t, "/vendedor")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestJSONLoginRejected(t *testing.T) {
	ta := newTestApp(t, "", true)

	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(`{"email":"a@pos.test","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := ta.do(t, req)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_CREDENTIALS")
}

func TestLoginWithUnusableBackendToken(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.backend.loginToken = "bad-token-string"

	req := httptest.NewRequest(nethttp.MethodPost, "/login", strings.NewReader(`{"email":"a@pos.test","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := ta.do(t, req)
	assert.Equal(t, nethttp.StatusBadGateway, resp.StatusCode)

	_, ok, _ := ta.store.Read(context.Background())
	assert.False(t, ok)
	assert.False(t, ta.session.State().Authenticated())
}

func TestProfileRejectedBySalesBackend(t *testing.T) {
	ta := newTestApp(t, tokenFor(t, domain.RoleVendedor), true)
	ta.backend.profileStatus = nethttp.StatusUnauthorized

	resp := ta.get(t, "/perfil")
	assert.Equal(t, nethttp.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?session=expired", resp.Header.Get("Location"))
	assert.False(t, ta.session.State().Authenticated())
}

func TestSessionEndpoint(t *testing.T) {
	ta := newTestApp(t, tokenFor(t, domain.RoleConsultor), true)

	data := decodeData(t, ta.get(t, "/session"))
	assert.Equal(t, true, data["authenticated"])
	assert.Equal(t, false, data["loading"])
	assert.Equal(t, "/consultor", data["landing"])
	assert.Equal(t, "consultor", data["identity"].(map[string]any)["role"])
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	ta := newTestApp(t, "", true)

	resp := ta.get(t, "/nowhere")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestApp(t, "", true)
	ta.get(t, "/admin")

	resp := ta.get(t, "/metrics")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "pos_router_test_route_guard_decisions_total")
}

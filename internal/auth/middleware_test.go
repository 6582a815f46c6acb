package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pos-frontend/internal/domain"
)

type staticSession struct {
	state domain.SessionState
}

func (s *staticSession) State() domain.SessionState { return s.state }

type guardCounter struct {
	states []string
}

func (g *guardCounter) RecordGuard(_ string, state string) { g.states = append(g.states, state) }

func guardedApp(guard *RouteGuard, required *domain.Role) *fiber.App {
	app := fiber.New()
	app.Get("/area", guard.Protect(required), func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(identity.Email)
	})
	return app
}

func TestRouteGuardProtect(t *testing.T) {
	seller := &domain.Identity{SubjectID: "1", Email: "v@pos.test", Role: domain.RoleVendedor}
	consultant := &domain.Identity{SubjectID: "2", Email: "c@pos.test", Role: domain.RoleConsultor}
	admin := &domain.Identity{SubjectID: "3", Email: "a@pos.test", Role: domain.RoleAdmin}

	cases := []struct {
		name     string
		state    domain.SessionState
		required *domain.Role
		status   int
		location string
		guard    string
	}{
		{"loading", domain.SessionState{Loading: true, Identity: admin}, nil, http.StatusServiceUnavailable, "", "loading"},
		{"no identity", domain.SessionState{}, domain.RoleRef(domain.RoleVendedor), http.StatusFound, "/login", "unauthenticated"},
		{"consultant on admin", domain.SessionState{Identity: consultant}, domain.RoleRef(domain.RoleAdmin), http.StatusFound, "/dashboard-selector", "denied"},
		{"admin on seller", domain.SessionState{Identity: admin}, domain.RoleRef(domain.RoleVendedor), http.StatusOK, "", "granted"},
		{"seller without requirement", domain.SessionState{Identity: seller}, nil, http.StatusOK, "", "granted"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			counter := &guardCounter{}
			app := guardedApp(NewRouteGuard(&staticSession{state: tc.state}, counter), tc.required)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/area", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.location, resp.Header.Get("Location"))
			assert.Equal(t, []string{tc.guard}, counter.states)
			if tc.status == http.StatusServiceUnavailable {
				assert.Equal(t, "1", resp.Header.Get("Retry-After"))
			}
		})
	}
}

func TestRouteGuardReevaluatesEveryNavigation(t *testing.T) {
	session := &staticSession{state: domain.SessionState{Loading: true}}
	guard := NewRouteGuard(session, nil)
	required := domain.RoleRef(domain.RoleConsultor)

	state, _ := guard.Check(required)
	assert.Equal(t, GuardLoading, state)

	session.state = domain.SessionState{Identity: &domain.Identity{Role: domain.RoleConsultor}}
	state, _ = guard.Check(required)
	assert.Equal(t, GuardGranted, state)

	session.state = domain.SessionState{}
	state, _ = guard.Check(required)
	assert.Equal(t, GuardUnauthenticated, state)
}

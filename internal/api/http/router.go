package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/pos-frontend/internal/api/http/handlers"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Session *handlers.SessionHandler
	Areas   *handlers.AreaHandler
	Profile *handlers.ProfileHandler
	Guard   *auth.RouteGuard
	Metrics http.Handler
}

// RegisterRoutes wires HTTP routes. Every area is reachable only through the guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(domain.DestinationAreaSelector.Path(), http.StatusFound)
	})
	app.Get("/login", cfg.Auth.LoginPage)
	app.Post("/login", cfg.Auth.Login)
	app.Get("/logout", cfg.Auth.Logout)
	app.Post("/logout", cfg.Auth.Logout)
	app.Get("/session", cfg.Session.Show)

	anyRole := cfg.Guard.Protect(nil)
	app.Get(domain.DestinationAreaSelector.Path(), anyRole, cfg.Session.Selector)
	app.Get("/perfil", anyRole, cfg.Profile.Show)
	app.Put("/perfil", anyRole, cfg.Profile.Update)

	registerArea(app, cfg, domain.DestinationAdminArea, domain.RoleAdmin)
	registerArea(app, cfg, domain.DestinationSellerArea, domain.RoleVendedor)
	registerArea(app, cfg, domain.DestinationConsultantArea, domain.RoleConsultor)
}

func registerArea(app *fiber.App, cfg RouteConfig, area domain.Destination, role domain.Role) {
	group := app.Group(area.Path(), cfg.Guard.Protect(domain.RoleRef(role)))
	show := cfg.Areas.Show(area, role)
	group.Get("/", show)
	group.Get("/*", show)
}

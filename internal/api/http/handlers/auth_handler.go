package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/api/dto"
	"github.com/spec-kit/pos-frontend/internal/domain"
	"github.com/spec-kit/pos-frontend/internal/service"
	apperrors "github.com/spec-kit/pos-frontend/pkg/util"
)

// AuthHandler serves the login and logout flows.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	view := fiber.Map{"view": "login"}
	if c.Query("session") == "expired" {
		view["notice"] = "Tu sesión ha expirado. Inicia sesión nuevamente."
	}
	if code := c.Query("error"); code != "" {
		view["error"] = code
	}
	return c.JSON(fiber.Map{"data": view})
}

// Login handles POST /login. JSON callers get a JSON body; form posts are
// redirected to the landing area or back to the login view.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	identity, dest, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if c.Is("json") {
			return err
		}
		return c.Redirect("/login?error="+url.QueryEscape(apperrors.ToDomainError(err).Code), http.StatusSeeOther)
	}

	if c.Is("json") {
		return c.JSON(fiber.Map{"data": dto.LoginResponse{
			Identity: dto.NewIdentityResponse(identity),
			Redirect: dest.Path(),
		}})
	}
	return c.Redirect(dest.Path(), http.StatusSeeOther)
}

// Logout handles GET and POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext())
	return c.Redirect(domain.DestinationLogin.Path(), http.StatusFound)
}

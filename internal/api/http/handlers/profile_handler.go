package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/api/dto"
	"github.com/spec-kit/pos-frontend/internal/service"
	apperrors "github.com/spec-kit/pos-frontend/pkg/util"
)

const sessionExpiredPath = "/login?session=expired"

// ProfileHandler proxies the operator profile to the sales backend.
type ProfileHandler struct {
	auth *service.AuthService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: authService}
}

// Show handles GET /perfil.
func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	profile, err := h.auth.Profile(c.UserContext())
	if errors.Is(err, service.ErrSessionExpired) {
		return c.Redirect(sessionExpiredPath, http.StatusFound)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// Update handles PUT /perfil.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" && req.Email == "" && req.Password == "" {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	err := h.auth.UpdateProfile(c.UserContext(), req.ToDomain())
	if errors.Is(err, service.ErrSessionExpired) {
		return c.Redirect(sessionExpiredPath, http.StatusFound)
	}
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/api/dto"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/domain"
	apperrors "github.com/spec-kit/pos-frontend/pkg/util"
)

// AreaHandler renders the landing views of the role areas.
type AreaHandler struct{}

// NewAreaHandler constructs handler.
func NewAreaHandler() *AreaHandler {
	return &AreaHandler{}
}

// Show renders the area with the navigation menu of the role it serves.
// It must sit behind the route guard.
func (h *AreaHandler) Show(area domain.Destination, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := auth.IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("no active session")
		}
		return c.JSON(fiber.Map{"data": dto.AreaView{
			Area:    string(area),
			Section: c.Params("*"),
			Menu:    domain.AreaMenu(role),
			User:    dto.NewIdentityResponse(identity),
		}})
	}
}

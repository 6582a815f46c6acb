package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/api/dto"
	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/domain"
)

// SessionHandler exposes the session snapshot and the area selector.
type SessionHandler struct {
	session auth.SessionReader
}

// NewSessionHandler constructs handler.
func NewSessionHandler(session auth.SessionReader) *SessionHandler {
	return &SessionHandler{session: session}
}

// Show handles GET /session.
func (h *SessionHandler) Show(c *fiber.Ctx) error {
	state := h.session.State()
	resp := dto.SessionResponse{
		Loading:       state.Loading,
		Authenticated: state.Authenticated(),
		Landing:       auth.DefaultArea(state.Role()).Path(),
	}
	if state.Identity != nil {
		identity := dto.NewIdentityResponse(state.Identity)
		resp.Identity = &identity
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Selector handles GET /dashboard-selector. Administrators choose a panel;
// other roles are sent to their own area.
func (h *SessionHandler) Selector(c *fiber.Ctx) error {
	role := h.session.State().Role()
	areas := auth.SelectableAreas(role)
	if len(areas) == 0 {
		return c.Redirect(auth.DefaultArea(role).Path(), http.StatusFound)
	}

	choices := make([]dto.AreaChoice, 0, len(areas))
	for _, area := range areas {
		choices = append(choices, dto.AreaChoice{Area: string(area), Path: area.Path()})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"view":    string(domain.DestinationAreaSelector),
		"choices": choices,
	}})
}

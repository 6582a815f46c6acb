package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/domain"
)

const identityKey = "auth_identity"

// GuardState is the per-navigation outcome of the route guard.
type GuardState uint8

const (
	GuardLoading GuardState = iota
	GuardUnauthenticated
	GuardDenied
	GuardGranted
)

func (s GuardState) String() string {
	switch s {
	case GuardUnauthenticated:
		return "unauthenticated"
	case GuardDenied:
		return "denied"
	case GuardGranted:
		return "granted"
	default:
		return "loading"
	}
}

// SessionReader exposes the terminal session snapshot.
type SessionReader interface {
	State() domain.SessionState
}

// GuardRecorder observes guard outcomes.
type GuardRecorder interface {
	RecordGuard(path string, state string)
}

// RouteGuard decides every navigation to a protected area from the current session.
type RouteGuard struct {
	session  SessionReader
	recorder GuardRecorder
}

// NewRouteGuard constructs the guard. recorder may be nil.
func NewRouteGuard(session SessionReader, recorder GuardRecorder) *RouteGuard {
	return &RouteGuard{session: session, recorder: recorder}
}

// Check evaluates the guard state for an area requiring the given role.
func (g *RouteGuard) Check(required *domain.Role) (GuardState, domain.SessionState) {
	state := g.session.State()
	if state.Loading {
		return GuardLoading, state
	}
	switch Evaluate(state.Identity, required) {
	case DecisionAllow:
		return GuardGranted, state
	case DecisionDenyToSelector:
		return GuardDenied, state
	default:
		return GuardUnauthenticated, state
	}
}

// Protect enforces the guard in front of a route group.
func (g *RouteGuard) Protect(required *domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		guardState, state := g.Check(required)
		if g.recorder != nil {
			g.recorder.RecordGuard(c.Route().Path, guardState.String())
		}

		switch guardState {
		case GuardLoading:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"data": fiber.Map{"status": "loading"},
			})
		case GuardUnauthenticated:
			return c.Redirect(domain.DestinationLogin.Path(), http.StatusFound)
		case GuardDenied:
			return c.Redirect(domain.DestinationAreaSelector.Path(), http.StatusFound)
		}

		c.Locals(identityKey, state.Identity)
		return c.Next()
	}
}

// IdentityFromContext retrieves the identity admitted by the guard.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}

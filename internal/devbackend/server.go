package devbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/domain"
)

// Server stands in for the sales backend's login and profile endpoints.
type Server struct {
	users  *Directory
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewServer builds the server. tokens must hold a signing secret.
func NewServer(users *Directory, tokens *auth.TokenManager, logger *zap.Logger) *Server {
	return &Server{users: users, tokens: tokens, logger: logger}
}

// Register mounts the endpoints on app.
func (s *Server) Register(app *fiber.App) {
	app.Post("/login", s.login)
	app.Get("/profile", s.getProfile)
	app.Put("/profile", s.updateProfile)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", req.Email))
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Credenciales incorrectas"})
	}

	token, exp, err := s.tokens.GenerateToken(user.ID, user.Email, domain.ParseRole(user.Role), user.Name)
	if err != nil {
		s.logger.Error("issue token", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "no se pudo emitir el token"})
	}
	s.logger.Info("login accepted", zap.String("subject_id", user.ID), zap.String("role", user.Role), zap.Time("expires_at", exp))
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	user, err := s.principal(c)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(domain.Profile{Name: user.Name, Email: user.Email, Role: user.Role})
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	user, err := s.principal(c)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	var update domain.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	if err := s.users.Update(user.ID, update); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *Server) principal(c *fiber.Ctx) (User, error) {
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return User{}, errors.New("missing bearer token")
	}
	identity, err := s.tokens.DecodeAndValidate(parts[1])
	if err != nil {
		return User{}, errors.New("invalid token")
	}
	return s.users.Get(identity.SubjectID)
}

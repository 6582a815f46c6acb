package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/backend"
	"github.com/spec-kit/pos-frontend/internal/domain"
	apperrors "github.com/spec-kit/pos-frontend/pkg/util"
)

// ErrSessionExpired is returned when the backend no longer accepts the session
// token. The session has already been logged out.
var ErrSessionExpired = errors.New("session expired")

// SessionManager is the terminal session as used by the auth flows.
type SessionManager interface {
	State() domain.SessionState
	Done() <-chan struct{}
	Login(ctx context.Context, token string) (*domain.Identity, error)
	Logout(ctx context.Context)
	BearerToken() (string, bool)
}

// Collaborator is the sales backend's login and profile surface.
type Collaborator interface {
	Login(ctx context.Context, email, password string) (string, error)
	GetProfile(ctx context.Context, token string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate, token string) error
}

// AuthService coordinates login, logout and profile flows.
type AuthService struct {
	session SessionManager
	backend Collaborator
	logger  *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(session SessionManager, backend Collaborator, logger *zap.Logger) *AuthService {
	return &AuthService{session: session, backend: backend, logger: logger}
}

// Login authenticates against the backend and adopts the returned token.
// On success it returns where the operator lands next.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Identity, domain.Destination, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.DestinationLogin, apperrors.NewValidationError("email and password required", nil)
	}

	// A login racing the initial restore would be overwritten by it.
	select {
	case <-s.session.Done():
	case <-ctx.Done():
		return nil, domain.DestinationLogin, apperrors.NewInternalError(ctx.Err())
	}

	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, domain.DestinationLogin, mapBackendError(err)
	}

	identity, err := s.session.Login(ctx, token)
	if err != nil {
		s.logger.Warn("backend issued unusable token", zap.String("email", email), zap.Error(err))
		return nil, domain.DestinationLogin, apperrors.NewBadGateway("token inválido recibido del servidor", err)
	}
	return identity, domain.DestinationAreaSelector, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) {
	s.session.Logout(ctx)
}

// Profile loads the operator profile, falling back to token claims for
// fields the backend leaves empty.
func (s *AuthService) Profile(ctx context.Context) (*domain.Profile, error) {
	token, identity, err := s.bearer()
	if err != nil {
		return nil, err
	}

	profile, err := s.backend.GetProfile(ctx, token)
	if err != nil {
		return nil, s.profileError(ctx, err)
	}

	if profile.Name == "" {
		profile.Name = firstNonEmpty(identity.DisplayName, identity.Email, "Usuario")
	}
	if profile.Email == "" {
		profile.Email = firstNonEmpty(identity.Email, "Email no disponible")
	}
	if profile.Role == "" {
		profile.Role = firstNonEmpty(identity.RawRole, "Rol no disponible")
	}
	return profile, nil
}

// UpdateProfile submits profile changes.
func (s *AuthService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	token, _, err := s.bearer()
	if err != nil {
		return err
	}
	if err := s.backend.UpdateProfile(ctx, update, token); err != nil {
		return s.profileError(ctx, err)
	}
	return nil
}

func (s *AuthService) bearer() (string, *domain.Identity, error) {
	token, ok := s.session.BearerToken()
	identity := s.session.State().Identity
	if !ok || identity == nil {
		return "", nil, apperrors.NewUnauthorized("no active session")
	}
	return token, identity, nil
}

func (s *AuthService) profileError(ctx context.Context, err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		s.session.Logout(ctx)
		return ErrSessionExpired
	}
	if msg := backend.Message(err); msg != "" {
		return apperrors.NewBadGateway(msg, err)
	}
	return mapBackendError(err)
}

// Landing resolves where the current operator should go.
func (s *AuthService) Landing() domain.Destination {
	return auth.DefaultArea(s.session.State().Role())
}

func mapBackendError(err error) error {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return apperrors.NewInvalidCredentials()
	case errors.Is(err, backend.ErrNetwork):
		return apperrors.NewUpstreamUnavailable(err)
	case errors.Is(err, backend.ErrServer):
		msg := backend.Message(err)
		if msg == "" {
			msg = "error en el servidor"
		}
		return apperrors.NewBadGateway(msg, err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package dto

import (
	"time"

	"github.com/spec-kit/pos-frontend/internal/domain"
)

// LoginRequest payload for POST /login, as JSON or form fields.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// ProfileUpdateRequest payload for PUT /perfil.
type ProfileUpdateRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// IdentityResponse is the public view of the session identity.
type IdentityResponse struct {
	SubjectID string      `json:"subject_id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SessionResponse describes the terminal session.
type SessionResponse struct {
	Loading       bool              `json:"loading"`
	Authenticated bool              `json:"authenticated"`
	Identity      *IdentityResponse `json:"identity,omitempty"`
	Landing       string            `json:"landing"`
}

// LoginResponse is returned to JSON login callers.
type LoginResponse struct {
	Identity IdentityResponse `json:"identity"`
	Redirect string           `json:"redirect"`
}

// AreaChoice is one panel offered on the selector view.
type AreaChoice struct {
	Area string `json:"area"`
	Path string `json:"path"`
}

// AreaView is the payload of an area landing page.
type AreaView struct {
	Area    string            `json:"area"`
	Section string            `json:"section,omitempty"`
	Menu    []domain.MenuItem `json:"menu"`
	User    IdentityResponse  `json:"user"`
}

// NewIdentityResponse maps a domain identity.
func NewIdentityResponse(identity *domain.Identity) IdentityResponse {
	return IdentityResponse{
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		Role:      identity.Role,
		Name:      identity.DisplayName,
		ExpiresAt: identity.ExpiresAt,
	}
}

// ToDomain converts the request into a profile update.
func (r ProfileUpdateRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{Name: r.Name, Email: r.Email, Password: r.Password}
}

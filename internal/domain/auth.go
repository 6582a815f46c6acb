package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken is returned when a session token is malformed or its claims cannot be extracted.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned when a decodable token is at or past its expiry.
	ErrExpiredToken = errors.New("session token expired")
)

// Role enumerates the principal kinds governing area access.
type Role uint8

const (
	RoleUnrecognized Role = iota
	RoleAdmin
	RoleVendedor
	RoleConsultor
)

// ParseRole maps a claim value to a Role. Matching is exact: any other
// spelling, including case or whitespace variants, yields RoleUnrecognized.
func ParseRole(value string) Role {
	switch value {
	case "admin":
		return RoleAdmin
	case "vendedor":
		return RoleVendedor
	case "consultor":
		return RoleConsultor
	default:
		return RoleUnrecognized
	}
}

// Known reports whether the role belongs to the closed role set.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleVendedor, RoleConsultor:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleVendedor:
		return "vendedor"
	case RoleConsultor:
		return "consultor"
	default:
		return "unrecognized"
	}
}

// MarshalText encodes the role as its claim value.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RoleRef returns a pointer suitable for an optional role requirement.
func RoleRef(r Role) *Role {
	return &r
}

// Identity is the decoded payload of a validated session token.
type Identity struct {
	SubjectID   string
	Email       string
	Role        Role
	RawRole     string
	DisplayName string
	ExpiresAt   time.Time
}

// SessionState is a consistent snapshot of the terminal's session.
type SessionState struct {
	Loading  bool
	Identity *Identity
}

// Authenticated reports whether an identity is present.
func (s SessionState) Authenticated() bool {
	return s.Identity != nil
}

// Role returns the identity's role, or RoleUnrecognized when unauthenticated.
func (s SessionState) Role() Role {
	if s.Identity == nil {
		return RoleUnrecognized
	}
	return s.Identity.Role
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/pos-frontend/internal/domain"
)

// TokenManager decodes, validates and issues session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for expiry checks and issuing.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// NewTokenManager builds a new manager. With an empty secret tokens are
// decoded without signature verification and cannot be issued.
func NewTokenManager(secret string, ttlMinutes int, opts ...TokenOption) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	tm := &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes the session token payload issued by the sales backend.
type Claims struct {
	SubjectID string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// VerifiesSignature reports whether tampering is detected by this manager.
func (tm *TokenManager) VerifiesSignature() bool {
	return len(tm.secret) > 0
}

// GenerateToken builds and signs a session token for the identity.
func (tm *TokenManager) GenerateToken(subjectID, email string, role domain.Role, name string) (string, time.Time, error) {
	if !tm.VerifiesSignature() {
		return "", time.Time{}, errors.New("token signing requires a secret")
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Email:     email,
		Role:      role.String(),
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Decode parses the token's claims into an identity. Expiry is not checked.
func (tm *TokenManager) Decode(tokenStr string) (*domain.Identity, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	}

	// Expiry is evaluated by DecodeAndValidate against the manager clock.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}

	var err error
	if tm.VerifiesSignature() {
		_, err = parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
			return tm.secret, nil
		})
	} else {
		_, _, err = parser.ParseUnverified(tokenStr, claims)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	return identityFromClaims(claims)
}

// DecodeAndValidate decodes the token and rejects it when expiresAt is at or before now.
func (tm *TokenManager) DecodeAndValidate(tokenStr string) (*domain.Identity, error) {
	identity, err := tm.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if !identity.ExpiresAt.After(tm.now()) {
		return nil, fmt.Errorf("%w: expired at %s", domain.ErrExpiredToken, identity.ExpiresAt.Format(time.RFC3339))
	}
	return identity, nil
}

func identityFromClaims(claims *Claims) (*domain.Identity, error) {
	subjectID := claims.SubjectID
	if subjectID == "" {
		subjectID = claims.Subject
	}

	var missing []string
	if subjectID == "" {
		missing = append(missing, "id")
	}
	if claims.Email == "" {
		missing = append(missing, "email")
	}
	if claims.Role == "" {
		missing = append(missing, "role")
	}
	if claims.ExpiresAt == nil {
		missing = append(missing, "exp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing claims %s", domain.ErrInvalidToken, strings.Join(missing, ","))
	}

	return &domain.Identity{
		SubjectID:   subjectID,
		Email:       claims.Email,
		Role:        domain.ParseRole(claims.Role),
		RawRole:     claims.Role,
		DisplayName: claims.Name,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

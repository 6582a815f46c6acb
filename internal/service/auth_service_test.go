package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/auth"
	"github.com/spec-kit/pos-frontend/internal/backend"
	"github.com/spec-kit/pos-frontend/internal/domain"
	"github.com/spec-kit/pos-frontend/internal/events"
	"github.com/spec-kit/pos-frontend/internal/observability"
	"github.com/spec-kit/pos-frontend/internal/session"
	apperrors "github.com/spec-kit/pos-frontend/pkg/util"
)

const serviceSecret = "service-secret"

type fakeBackend struct {
	token      string
	loginErr   error
	profile    *domain.Profile
	profileErr error
	updates    []domain.ProfileUpdate
	tokensSeen []string
}

func (f *fakeBackend) Login(context.Context, string, string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeBackend) GetProfile(_ context.Context, token string) (*domain.Profile, error) {
	f.tokensSeen = append(f.tokensSeen, token)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	copied := *f.profile
	return &copied, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, update domain.ProfileUpdate, token string) error {
	f.tokensSeen = append(f.tokensSeen, token)
	if f.profileErr != nil {
		return f.profileErr
	}
	f.updates = append(f.updates, update)
	return nil
}

func newService(t *testing.T, fb *fakeBackend) (*AuthService, *session.Session, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	sess := session.New(store, auth.NewTokenManager(serviceSecret, 60), nil, zap.NewNop())
	sess.Restore(context.Background())
	return NewAuthService(sess, fb, zap.NewNop()), sess, store
}

func issueToken(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := auth.NewTokenManager(serviceSecret, 60).GenerateToken("u-1", "ana@pos.test", role, "")
	require.NoError(t, err)
	return token
}

func TestLoginLandsOnSelector(t *testing.T) {
	fb := &fakeBackend{token: issueToken(t, domain.RoleVendedor)}
	svc, sess, _ := newService(t, fb)

	identity, dest, err := svc.Login(context.Background(), " ana@pos.test ", "secreto")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleVendedor, identity.Role)
	assert.Equal(t, domain.DestinationAreaSelector, dest)
	assert.True(t, sess.State().Authenticated())
	assert.Equal(t, domain.DestinationSellerArea, svc.Landing())
}

func TestLoginValidation(t *testing.T) {
	svc, _, _ := newService(t, &fakeBackend{})

	_, _, err := svc.Login(context.Background(), "", "x")
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginBackendErrors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{backend.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{backend.ErrNetwork, "UPSTREAM_UNAVAILABLE", http.StatusServiceUnavailable},
		{&backend.ServerError{Status: 500, Message: "caído"}, "UPSTREAM_ERROR", http.StatusBadGateway},
		{errors.New("weird"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		svc, sess, _ := newService(t, &fakeBackend{loginErr: tc.err})
		_, dest, err := svc.Login(context.Background(), "a@pos.test", "x")
		de := apperrors.ToDomainError(err)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus)
		assert.Equal(t, domain.DestinationLogin, dest)
		assert.False(t, sess.State().Authenticated())
	}
}

func TestLoginUnusableTokenLeavesStoreCleared(t *testing.T) {
	svc, sess, store := newService(t, &fakeBackend{token: "bad-token-string"})

	_, _, err := svc.Login(context.Background(), "a@pos.test", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.False(t, sess.State().Authenticated())
	_, ok, _ := store.Read(context.Background())
	assert.False(t, ok)
}

func TestProfileFallsBackToClaims(t *testing.T) {
	token := issueToken(t, domain.RoleConsultor)
	fb := &fakeBackend{token: token, profile: &domain.Profile{Name: "Ana"}}
	svc, _, _ := newService(t, fb)
	_, _, err := svc.Login(context.Background(), "a@pos.test", "x")
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{Name: "Ana", Email: "ana@pos.test", Role: "consultor"}, *profile)
	assert.Equal(t, []string{token}, fb.tokensSeen)
}

func TestProfileWithoutSession(t *testing.T) {
	svc, _, _ := newService(t, &fakeBackend{})

	_, err := svc.Profile(context.Background())
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
}

func TestProfileRejectedTokenLogsOut(t *testing.T) {
	fb := &fakeBackend{token: issueToken(t, domain.RoleAdmin)}
	svc, sess, store := newService(t, fb)
	_, _, err := svc.Login(context.Background(), "a@pos.test", "x")
	require.NoError(t, err)

	fb.profileErr = backend.ErrUnauthorized
	err = svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "x"})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, sess.State().Authenticated())
	_, ok, _ := store.Read(context.Background())
	assert.False(t, ok)
}

func TestUpdateProfile(t *testing.T) {
	fb := &fakeBackend{token: issueToken(t, domain.RoleAdmin)}
	svc, _, _ := newService(t, fb)
	_, _, err := svc.Login(context.Background(), "a@pos.test", "x")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(context.Background(), domain.ProfileUpdate{Email: "nuevo@pos.test"}))
	assert.Equal(t, "nuevo@pos.test", fb.updates[0].Email)
}

func TestAuditServiceCountsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics("pos_test")
	NewAuditService(dispatcher, zap.NewNop(), metrics).RegisterHandlers()

	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), "bad-token-string"))
	sess := session.New(store, auth.NewTokenManager(serviceSecret, 60), dispatcher, zap.NewNop())
	sess.Restore(context.Background())
	sess.Logout(context.Background())

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != "pos_test_session_events_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}

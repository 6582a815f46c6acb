package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/pos-frontend/internal/domain"
	"github.com/spec-kit/pos-frontend/internal/events"
)

// Decoder turns a raw token into a validated identity.
type Decoder interface {
	DecodeAndValidate(token string) (*domain.Identity, error)
}

// Session is the terminal's single session. It starts loading, is populated
// once by Restore and afterwards changes only through Login and Logout.
type Session struct {
	store   TokenStore
	decoder Decoder
	events  events.Dispatcher
	logger  *zap.Logger

	// writeMu serializes every store mutation with its state transition.
	writeMu sync.Mutex

	mu       sync.RWMutex
	loading  bool
	identity *domain.Identity
	token    string

	restoreOnce sync.Once
	done        chan struct{}
}

// New constructs a loading session. dispatcher may be nil.
func New(store TokenStore, decoder Decoder, dispatcher events.Dispatcher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:   store,
		decoder: decoder,
		events:  dispatcher,
		logger:  logger,
		loading: true,
		done:    make(chan struct{}),
	}
}

// State returns a consistent snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SessionState{Loading: s.loading, Identity: s.identity}
}

// Role returns the current identity's role.
func (s *Session) Role() domain.Role {
	return s.State().Role()
}

// BearerToken returns the validated raw token for collaborator calls.
func (s *Session) BearerToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.identity != nil
}

// Done is closed once Restore has completed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Restore loads the persisted token. Only the first call has any effect.
// Unreadable, invalid or expired tokens are cleared and leave the session
// unauthenticated; loading always ends.
func (s *Session) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		event := s.restore(ctx)
		close(s.done)
		s.publish(ctx, event)
	})
}

func (s *Session) restore(ctx context.Context) events.Event {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	token, ok, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Warn("session token unreadable", zap.Error(err))
		s.clearStore(ctx)
		s.apply(nil, "")
		return rejected(events.EventSessionRestoreRejected, err)
	}
	if !ok {
		s.apply(nil, "")
		return events.NewEvent(events.EventSessionRestored)
	}

	identity, err := s.decoder.DecodeAndValidate(token)
	if err != nil {
		s.logger.Info("discarding stored session token", zap.Error(err))
		s.clearStore(ctx)
		s.apply(nil, "")
		return rejected(events.EventSessionRestoreRejected, err)
	}

	s.apply(identity, token)
	return withIdentity(events.NewEvent(events.EventSessionRestored), identity)
}

// Login persists token and adopts its identity. When the token cannot be
// persisted or validated the session is logged out and the cause returned.
// Surrounding whitespace is stripped before the token is stored.
func (s *Session) Login(ctx context.Context, token string) (*domain.Identity, error) {
	identity, previous, event, err := s.login(ctx, strings.TrimSpace(token))
	s.publish(ctx, event)
	if err != nil {
		logout := events.NewEvent(events.EventSessionLogout)
		if previous != nil {
			logout = withIdentity(logout, previous)
		}
		s.publish(ctx, logout)
		return nil, err
	}
	return identity, nil
}

// login returns the adopted identity, or on failure the identity that was
// logged out.
func (s *Session) login(ctx context.Context, token string) (*domain.Identity, *domain.Identity, events.Event, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	previous := s.State().Identity

	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Error("persist session token", zap.Error(err))
		s.logoutLocked(ctx)
		return nil, previous, rejected(events.EventSessionLoginRejected, err), fmt.Errorf("login: %w", err)
	}

	identity, err := s.decoder.DecodeAndValidate(token)
	if err != nil {
		s.logger.Warn("login with unusable token", zap.Error(err))
		s.logoutLocked(ctx)
		return nil, previous, rejected(events.EventSessionLoginRejected, err), fmt.Errorf("login: %w", err)
	}

	s.apply(identity, token)
	return identity, nil, withIdentity(events.NewEvent(events.EventSessionLogin), identity), nil
}

// Logout clears the persisted token and the identity. It cannot fail; store
// errors are logged.
func (s *Session) Logout(ctx context.Context) {
	s.writeMu.Lock()
	previous := s.State().Identity
	s.logoutLocked(ctx)
	s.writeMu.Unlock()

	event := events.NewEvent(events.EventSessionLogout)
	if previous != nil {
		event = withIdentity(event, previous)
	}
	s.publish(ctx, event)
}

func (s *Session) logoutLocked(ctx context.Context) {
	s.clearStore(ctx)
	s.apply(nil, "")
}

func (s *Session) clearStore(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("clear session token", zap.Error(err))
	}
}

// apply replaces identity and ends loading in a single step.
func (s *Session) apply(identity *domain.Identity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
	s.token = token
	s.loading = false
}

func (s *Session) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Debug("session event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func withIdentity(event events.Event, identity *domain.Identity) events.Event {
	event.SubjectID = identity.SubjectID
	event.Role = identity.Role.String()
	return event
}

func rejected(eventType events.EventType, cause error) events.Event {
	event := events.NewEvent(eventType)
	switch {
	case errors.Is(cause, domain.ErrExpiredToken):
		event.Reason = "expired"
	case errors.Is(cause, domain.ErrInvalidToken):
		event.Reason = "invalid"
	default:
		event.Reason = "storage"
	}
	return event
}

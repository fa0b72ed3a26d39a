// Package session holds the client-wide authentication state: who is signed
// in, whether the session cookie sync is still in flight, and who wants to
// hear about identity changes.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/domain/identity"
	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// Syncer mirrors identity transitions to the booking API so it can set or
// clear its credential cookie. Implemented by the api client.
type Syncer interface {
	SyncSession(ctx context.Context, email string) error
	EndSession(ctx context.Context) error
}

// Subscriber is notified synchronously after every identity change.
// A nil user means signed out.
type Subscriber func(user *identity.User)

// Service is the session context. All reads and writes go through it; the
// identity provider owns credentials, the api client owns the cookie.
type Service struct {
	provider identity.Provider
	sync     Syncer
	logger   *zap.Logger

	mu          sync.RWMutex
	user        *identity.User
	loading     bool
	subscribers []Subscriber
}

// NewService creates the session context in the signed-out state
func NewService(provider identity.Provider, syncer Syncer, logger *zap.Logger) *Service {
	return &Service{
		provider: provider,
		sync:     syncer,
		logger:   logger.Named("session"),
	}
}

// CurrentUser returns the signed-in user, if any
func (s *Service) CurrentUser() (identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return identity.User{}, false
	}
	return *s.user, true
}

// Loading reports whether an identity operation, including its cookie sync,
// is still in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers a synchronous identity-change listener
func (s *Service) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Register creates an account and signs it in. A non-empty displayName is
// applied right after sign-up, matching the one-step registration form.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (identity.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return identity.User{}, err
	}
	if displayName != "" {
		patched, err := s.provider.UpdateProfile(ctx, identity.ProfilePatch{DisplayName: &displayName})
		if err != nil {
			// The account exists; a failed rename should not fail registration.
			s.logger.Warn("display name update after sign-up failed", zap.Error(err))
		} else {
			user = patched
		}
	}
	s.establish(ctx, user)
	return user, nil
}

// Login signs an existing account in
func (s *Service) Login(ctx context.Context, email, password string) (identity.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return identity.User{}, err
	}
	s.establish(ctx, user)
	return user, nil
}

// Logout always succeeds locally. The provider sign-out and the cookie clear
// are best effort; failures are logged, never surfaced.
func (s *Service) Logout(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	s.setUser(nil)

	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("provider sign-out failed", zap.Error(err))
	}
	if err := s.sync.EndSession(ctx); err != nil {
		s.logger.Warn("session cookie clear failed", zap.Error(err))
	}
}

// UpdateProfile patches the signed-in user's profile
func (s *Service) UpdateProfile(ctx context.Context, patch identity.ProfilePatch) (identity.User, error) {
	if _, ok := s.CurrentUser(); !ok {
		return identity.User{}, shared.ErrAuthRequired
	}
	if patch.IsEmpty() {
		user, _ := s.CurrentUser()
		return user, nil
	}

	user, err := s.provider.UpdateProfile(ctx, patch)
	if err != nil {
		return identity.User{}, err
	}
	s.setUser(&user)
	return user, nil
}

// establish stores the user, notifies subscribers, then syncs the credential
// cookie. A failed sync is logged only; the local session stands.
func (s *Service) establish(ctx context.Context, user identity.User) {
	s.setUser(&user)
	if err := s.sync.SyncSession(ctx, user.Email); err != nil {
		s.logger.Warn("session cookie sync failed", zap.String("email", user.Email), zap.Error(err))
	}
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Service) setUser(user *identity.User) {
	s.mu.Lock()
	s.user = user
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}

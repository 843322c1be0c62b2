package core

import (
	"context"
	"errors"
	"sync"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
	"github.com/rs/zerolog/log"
)

type Credentials struct {
	Email    string `json:"email" label:"Email" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required"`
}

type Registration struct {
	Name            string `json:"name" label:"Name" validate:"required"`
	Email           string `json:"email" label:"Email" validate:"required,emailshape"`
	Password        string `json:"password" label:"Password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" label:"Confirm password" validate:"required,eqfield=Password"`
}

// AuthService owns the process-wide session. It is created once at startup
// and shared by every caller, so its state sits behind a lock.
type AuthService struct {
	account backend.Account

	mu   sync.RWMutex
	user *model.User
}

func NewAuthService(account backend.Account) *AuthService {
	return &AuthService{account: account}
}

// Restore asks the backend for a session left over from a previous run.
// A missing session is not an error.
func (s *AuthService) Restore(ctx context.Context) (model.User, bool, error) {
	user, err := s.account.CurrentUser(ctx)
	if errors.Is(err, backend.ErrUnauthorized) {
		s.setUser(nil)
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fail(ctx, "restore session", err)
	}
	s.setUser(&user)
	return user, true, nil
}

func (s *AuthService) Login(ctx context.Context, in Credentials) (model.User, error) {
	if err := validateStruct(in); err != nil {
		return model.User{}, err
	}
	s.dropStaleSession(ctx)

	if _, err := s.account.CreateSession(ctx, in.Email, in.Password); err != nil {
		return model.User{}, fail(ctx, "sign in", err)
	}
	user, err := s.account.CurrentUser(ctx)
	if err != nil {
		return model.User{}, fail(ctx, "sign in", err)
	}
	s.setUser(&user)
	log.Ctx(ctx).Info().Str("userId", user.ID).Msg("User signed in")
	return user, nil
}

// Register creates the account and signs it in. Input is validated before
// anything is sent to the backend.
func (s *AuthService) Register(ctx context.Context, in Registration) (model.Session, error) {
	if err := validateStruct(in); err != nil {
		return model.Session{}, err
	}
	s.dropStaleSession(ctx)

	user, err := s.account.CreateAccount(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return model.Session{}, fail(ctx, "create account", err)
	}
	session, err := s.account.CreateSession(ctx, in.Email, in.Password)
	if err != nil {
		return model.Session{}, fail(ctx, "sign in", err)
	}
	s.setUser(&user)
	log.Ctx(ctx).Info().Str("userId", user.ID).Msg("Account registered")
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	err := s.account.DeleteSession(ctx)
	if err != nil && !errors.Is(err, backend.ErrUnauthorized) {
		return fail(ctx, "sign out", err)
	}
	s.setUser(nil)
	return nil
}

// CurrentUser returns the signed-in user, if any.
func (s *AuthService) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *AuthService) IsAuthenticated() bool {
	_, ok := s.CurrentUser()
	return ok
}

// dropStaleSession ends the current session before a new one is created;
// hosted backends refuse a second session on the same client.
func (s *AuthService) dropStaleSession(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	if err := s.account.DeleteSession(ctx); err != nil && !errors.Is(err, backend.ErrUnauthorized) {
		log.Ctx(ctx).Warn().Err(err).Msg("Could not end previous session")
	}
	s.setUser(nil)
}

func (s *AuthService) setUser(u *model.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

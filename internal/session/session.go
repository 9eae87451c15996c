// Package session owns the credential and the profile of the signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"instaapp/internal/core"
	"instaapp/internal/validation"
	"instaapp/pkg/instaapi"
)

const (
	LoginSucceeded    = "Login successful!"
	RegisterSucceeded = "Register successful!"
	LogoutSucceeded   = "Logout successfully."

	LoginFailed    = "Login failed."
	RegisterFailed = "Registration failed."
	LogoutFailed   = "Failed to logout."
	EnterFailed    = "Unauthorized."

	teardownTimeout = time.Second
)

var (
	ErrNoCredential         = errors.New("not logged in")
	ErrAlreadyAuthenticated = errors.New("already logged in")
	ErrCredentialExpired    = errors.New("credential expired")
	ErrUnauthenticated      = errors.New("unauthenticated")
)

type State int

const (
	Unauthenticated State = iota
	Loading
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the single per-process session. Every authentication failure seen
// by the API client tears it down.
type Session struct {
	Logger *slog.Logger
	Tokens core.TokenStore
	API    core.API

	mu        sync.RWMutex
	state     State
	token     string
	user      *instaapi.User
	listeners []func(reason error)
}

func (s *Session) Init(ctx context.Context) error {
	s.Logger = s.Logger.With("component", "session.Session")

	token, err := s.Tokens.Load(ctx)
	if err != nil && !errors.Is(err, core.ErrNoToken) {
		return err
	}
	s.token = token

	s.API.SetTokenSource(instaapi.TokenFunc(s.Token))
	s.API.OnUnauthorized(s.Teardown)

	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Token is the in-memory credential, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Session) CurrentUser() *instaapi.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user
}

// OnTeardown registers fn to be called, outside of any lock, every time an
// authenticated session is torn down.
func (s *Session) OnTeardown(fn func(reason error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// Enter loads the profile of the credential owner. Any failure tears the
// session down.
func (s *Session) Enter(ctx context.Context) (*instaapi.User, error) {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.mu.Unlock()
		return nil, ErrNoCredential
	}
	if s.state == Authenticated && s.user != nil {
		user := s.user
		s.mu.Unlock()
		return user, nil
	}
	s.state = Loading
	s.mu.Unlock()

	if expired(token) {
		s.Teardown(ErrCredentialExpired)
		return nil, ErrCredentialExpired
	}

	user, err := s.API.Me(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		s.Teardown(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		return nil, ErrUnauthenticated
	}
	s.state = Authenticated
	s.user = user

	s.Logger.Debug("session authenticated", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// RequireGuest guards surfaces that only make sense without a credential.
func (s *Session) RequireGuest() error {
	if s.Token() != "" {
		return ErrAlreadyAuthenticated
	}
	return nil
}

// Login exchanges the credentials for a token and persists it. The profile is
// loaded by the following Enter.
func (s *Session) Login(ctx context.Context, form validation.LoginForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	token, _, err := s.API.Login(ctx, form.Username, form.Password)
	if err != nil {
		return "", err
	}

	if err := s.Tokens.Save(ctx, token); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.state = Unauthenticated
	s.user = nil
	s.mu.Unlock()

	return LoginSucceeded, nil
}

func (s *Session) Register(ctx context.Context, form validation.RegisterForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	if _, err := s.API.Register(ctx, form.Registration()); err != nil {
		return "", err
	}

	return RegisterSucceeded, nil
}

// Logout invalidates the credential server side, then forgets it locally. On
// failure the session is left as it was.
func (s *Session) Logout(ctx context.Context) (string, error) {
	if s.Token() == "" {
		return "", ErrNoCredential
	}

	message, err := s.API.Logout(ctx)
	if err != nil {
		return "", err
	}

	s.clear()
	if err := s.Tokens.Clear(ctx); err != nil {
		return "", err
	}

	if message == "" {
		message = LogoutSucceeded
	}
	return message, nil
}

// Teardown forgets the credential and the profile and notifies the listeners.
// Calling it on a session that is already torn down does nothing.
func (s *Session) Teardown(reason error) {
	if !s.clear() {
		return
	}

	s.Logger.Info("session torn down", "reason", reason)

	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := s.Tokens.Clear(ctx); err != nil {
		s.Logger.Error("failed to clear token", "error", err)
	}

	s.mu.RLock()
	listeners := append([]func(error){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(reason)
	}
}

func (s *Session) clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" && s.user == nil && s.state == Unauthenticated {
		return false
	}

	s.token = ""
	s.user = nil
	s.state = Unauthenticated
	return true
}

// expired reports whether token is a JWT whose exp claim is in the past. The
// signature is not checked; opaque tokens are never considered expired.
func expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}

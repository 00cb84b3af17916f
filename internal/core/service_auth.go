package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/leavetrack/internal/logging"
	"github.com/JonMunkholm/leavetrack/internal/session"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingFields    = errors.New("missing required fields")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// User-facing acknowledgements.
const (
	MsgSignupSuccess = "Account created successfully!"
	MsgLoginSuccess  = "Logged in successfully"
	MsgLogoutSuccess = "Logged out successfully"
)

// SignupRequest is the account creation form.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the sign-in form. Name is optional.
type LoginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup checks the password confirmation immediately, then waits out the
// simulated account creation before checking the remaining fields and
// storing the user in sess.
func (s *Service) Signup(ctx context.Context, sess *session.Session, req SignupRequest) (session.User, error) {
	if req.Password != req.ConfirmPassword {
		return session.User{}, ErrPasswordMismatch
	}

	if err := s.simulateLatency(ctx); err != nil {
		return session.User{}, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return session.User{}, ErrMissingFields
	}

	u := session.User{Name: name, Email: email, IsLoggedIn: true}
	if err := sess.Save(ctx, u); err != nil {
		return session.User{}, fmt.Errorf("save session: %w", err)
	}

	logging.FromContext(ctx).Info("account created", append([]any{"email", email}, RequestMetaFrom(ctx).logArgs()...)...)
	return u, nil
}

// Login stores the user in sess after the simulated delay. The display name
// comes from the request or, when absent, the local part of the email.
func (s *Service) Login(ctx context.Context, sess *session.Session, req LoginRequest) (session.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return session.User{}, ErrMissingFields
	}

	if err := s.simulateLatency(ctx); err != nil {
		return session.User{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	u := session.User{Name: name, Email: email, IsLoggedIn: true}
	if err := sess.Save(ctx, u); err != nil {
		return session.User{}, fmt.Errorf("save session: %w", err)
	}

	logging.FromContext(ctx).Info("user logged in", append([]any{"email", email}, RequestMetaFrom(ctx).logArgs()...)...)
	return u, nil
}

// Logout clears the stored user.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the logged-in user or ErrNotAuthenticated.
func (s *Service) CurrentUser(ctx context.Context, sess *session.Session) (session.User, error) {
	u, ok, err := sess.User(ctx)
	if err != nil {
		return session.User{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || !u.IsLoggedIn {
		return session.User{}, ErrNotAuthenticated
	}
	return u, nil
}

func (s *Service) simulateLatency(ctx context.Context) error {
	select {
	case <-s.clock.After(s.signupDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

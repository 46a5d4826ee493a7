package screen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tecsocial/client/internal/model"
)

// AuthAPI is the unauthenticated slice of the gateway used by the auth
// forms.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (model.AuthResult, error)
	Signup(ctx context.Context, username, email, password string) (model.AuthResult, error)
}

// SessionWriter commits credential transitions; the session store
// implements it.
type SessionWriter interface {
	Login(token string, userID int64) error
	Logout() error
}

// AuthScreen drives the login and signup forms. It validates input
// locally, calls the auth endpoints, and commits the resulting credential
// to the session store.
type AuthScreen struct {
	auth    AuthAPI
	session SessionWriter
	log     *zap.Logger
}

// NewAuthScreen mounts the auth forms.
func NewAuthScreen(auth AuthAPI, sess SessionWriter, log *zap.Logger) *AuthScreen {
	return &AuthScreen{auth: auth, session: sess, log: log}
}

// Login authenticates with email and password and commits the credential.
func (s *AuthScreen) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	if email == "" || password == "" {
		return model.AuthResult{}, ErrMissingFields
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("login: %w", err)
	}
	if err := s.session.Login(res.Token, res.UserID); err != nil {
		return model.AuthResult{}, err
	}
	s.log.Info("logged in", zap.Int64("user", res.UserID))
	return res, nil
}

// Signup creates an account and commits the credential. Email and
// password shapes are validated before any network call; a response
// without a token means the email or username is already taken.
func (s *AuthScreen) Signup(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	if username == "" || email == "" || password == "" {
		return model.AuthResult{}, ErrMissingFields
	}
	if err := model.ValidateEmail(email); err != nil {
		return model.AuthResult{}, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return model.AuthResult{}, err
	}

	res, err := s.auth.Signup(ctx, username, email, password)
	if err != nil {
		return model.AuthResult{}, ErrAccountExists
	}
	if res.Token == "" {
		return model.AuthResult{}, ErrAccountExists
	}
	if err := s.session.Login(res.Token, res.UserID); err != nil {
		return model.AuthResult{}, err
	}
	s.log.Info("account created", zap.Int64("user", res.UserID))
	return res, nil
}

// Logout erases the credential. Purely local, works offline.
func (s *AuthScreen) Logout() error {
	return s.session.Logout()
}

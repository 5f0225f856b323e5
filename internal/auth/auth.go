// Package auth implements the credential issuer: email+password sign-in and
// sign-up returning opaque bearer tokens backed by the sessions table.
package auth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chatsync-service/internal/models"
	"chatsync-service/internal/repositories"
	"chatsync-service/pkg/errors"
)

const (
	BcryptCost        = 12
	PasswordMinLength = 8
)

// Issuer validates credentials and manages bearer tokens.
type Issuer interface {
	SignUp(ctx context.Context, name, number, email, password string) (models.User, string, error)
	SignIn(ctx context.Context, email, password string) (models.User, string, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (int, error)
}

// Service is the database-backed Issuer.
type Service struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	tokenTTL time.Duration
}

// NewService constructs the issuer.
func NewService(users repositories.UserRepository, sessions repositories.SessionRepository, tokenTTL time.Duration) *Service {
	return &Service{users: users, sessions: sessions, tokenTTL: tokenTTL}
}

// SignUp registers a new principal and issues a token. The handle must be
// unique; registration does not overwrite an existing profile.
func (s *Service) SignUp(ctx context.Context, name, number, email, password string) (models.User, string, error) {
	if len(password) < PasswordMinLength {
		return models.User{}, "", errors.Invalid("password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, "", errors.Store("hash password", err)
	}

	user, err := s.users.CreateUser(ctx, name, number, email, string(hash))
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// SignIn verifies credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeNotFound {
			return models.User{}, "", errors.ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.User{}, "", errors.ErrInvalidCredentials
		}
		return models.User{}, "", errors.Store("compare password", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// SignOut revokes a token. Revoking twice is a no-op.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to the principal id.
func (s *Service) Authenticate(ctx context.Context, token string) (int, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}

func (s *Service) issueToken(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	if _, err := s.sessions.CreateSession(ctx, token, userID, time.Now().Add(s.tokenTTL)); err != nil {
		return "", errors.Store("create session", err)
	}
	return token, nil
}

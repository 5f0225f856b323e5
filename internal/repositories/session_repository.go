package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"

	"chatsync-service/internal/models"
	"chatsync-service/pkg/errors"
)

// SessionRepository persists issued bearer tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, token string, userID int, expiresAt time.Time) (models.Session, error)
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// SessionRepo is a sqlx-backed repository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// CreateSession stores a new token.
func (r *SessionRepo) CreateSession(ctx context.Context, token string, userID int, expiresAt time.Time) (models.Session, error) {
	var session models.Session
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)
        RETURNING token, user_id, created_at, expires_at`,
		token, userID, expiresAt).StructScan(&session)
	return session, err
}

// GetSession resolves a token. Expired tokens report ErrInvalidToken.
func (r *SessionRepo) GetSession(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token=$1`, token)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Session{}, errors.ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Session{}, errors.ErrInvalidToken
	}
	return session, nil
}

// DeleteSession revokes a token. Deleting an unknown token is not an error.
func (r *SessionRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

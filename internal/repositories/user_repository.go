package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chatsync-service/internal/models"
	"chatsync-service/pkg/errors"
)

const userColumns = `id, name, number, email, image_url, password_hash, created_at`

// UserRepository abstracts principal persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, name, number, email, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, userID int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByNumber(ctx context.Context, number string) (models.User, error)
	UpdateProfile(ctx context.Context, userID int, name, number, imageURL *string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// CreateUser inserts a new principal. Number and email are unique.
func (r *UserRepo) CreateUser(ctx context.Context, name, number, email, passwordHash string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (name, number, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		name, number, email, passwordHash).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_email_key" {
				return models.User{}, errors.ErrEmailTaken
			}
			return models.User{}, errors.ErrNumberTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUser fetches a principal by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.User{}, errors.ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail fetches a principal by email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.User{}, errors.ErrUserNotFound
	}
	return user, err
}

// GetUserByNumber resolves a handle to a principal.
func (r *UserRepo) GetUserByNumber(ctx context.Context, number string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE number=$1`, number)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.User{}, errors.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile merges the given fields into the profile. Nil fields keep
// their previous values; this is a merge, never a replace.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, name, number, imageURL *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET
            name = COALESCE($2, name),
            number = COALESCE($3, number),
            image_url = COALESCE($4, image_url)
        WHERE id=$1 RETURNING `+userColumns,
		userID, name, number, imageURL).StructScan(&user)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, errors.ErrNumberTaken
		}
		return models.User{}, err
	}
	return user, nil
}

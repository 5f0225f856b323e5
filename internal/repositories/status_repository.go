package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chatsync-service/internal/models"
)

const statusColumns = `id,
    user_id AS "user.user_id", user_name AS "user.name", user_number AS "user.number", user_image_url AS "user.image_url",
    image_url, timestamp, created_at`

// StatusRepository defines interactions for status broadcasts.
type StatusRepository interface {
	CreateStatus(ctx context.Context, owner models.ChatUser, imageURL string, timestamp int64) (models.Status, error)
	ListVisibleStatuses(ctx context.Context, cutoff int64, ownerIDs []int) ([]models.Status, error)
}

// StatusRepo is a sqlx-backed repository.
type StatusRepo struct {
	db *sqlx.DB
}

// NewStatusRepo constructs StatusRepo.
func NewStatusRepo(db *sqlx.DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// CreateStatus stores a status with the owner snapshot taken at this instant.
func (r *StatusRepo) CreateStatus(ctx context.Context, owner models.ChatUser, imageURL string, timestamp int64) (models.Status, error) {
	var status models.Status
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO statuses (user_id, user_name, user_number, user_image_url, image_url, timestamp)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+statusColumns,
		owner.UserID, owner.Name, owner.Number, owner.ImageURL, imageURL, timestamp).StructScan(&status)
	return status, err
}

// ListVisibleStatuses returns statuses newer than cutoff whose owner is in
// ownerIDs, newest first. Records outside the window stay in storage; they
// are simply excluded here.
func (r *StatusRepo) ListVisibleStatuses(ctx context.Context, cutoff int64, ownerIDs []int) ([]models.Status, error) {
	if len(ownerIDs) == 0 {
		return []models.Status{}, nil
	}
	var statuses []models.Status
	err := r.db.SelectContext(ctx, &statuses,
		`SELECT `+statusColumns+` FROM statuses
        WHERE timestamp > $1 AND user_id = ANY($2) ORDER BY timestamp DESC`,
		cutoff, pq.Array(ownerIDs))
	return statuses, err
}

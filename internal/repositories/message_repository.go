package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chatsync-service/internal/models"
)

// MessageRepository defines interactions for the append-only message log.
type MessageRepository interface {
	AppendMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, chatID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// AppendMessage stores a message. Messages are immutable once created.
func (r *MessageRepo) AppendMessage(ctx context.Context, chatID int, senderID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3)
        RETURNING id, chat_id, sender_id, content, created_at`,
		chatID, senderID, content).StructScan(&msg)
	return msg, err
}

// ListMessages returns the full message log of a chat in display order.
// Order is creation time ascending with the id as tie-break, so two messages
// with equal timestamps always come back in the same relative order.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, chat_id, sender_id, content, created_at FROM messages
        WHERE chat_id=$1 ORDER BY created_at ASC, id ASC`, chatID)
	return msgs, err
}

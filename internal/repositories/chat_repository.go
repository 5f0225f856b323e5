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

const chatColumns = `id,
    user1_id AS "user1.user_id", user1_name AS "user1.name", user1_number AS "user1.number", user1_image_url AS "user1.image_url",
    user2_id AS "user2.user_id", user2_name AS "user2.name", user2_number AS "user2.number", user2_image_url AS "user2.image_url",
    created_at`

// ChatRepository abstracts the chat membership index.
type ChatRepository interface {
	CreateChat(ctx context.Context, a, b models.ChatUser) (models.Chat, error)
	FindChatByNumbers(ctx context.Context, numberA, numberB string) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	ListChatsForUser(ctx context.Context, userID int, limit int) ([]models.Chat, error)
	IsParticipant(ctx context.Context, chatID int, userID int) (bool, error)
	ContactIDs(ctx context.Context, userID int) ([]int, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateChat inserts a chat with both participant snapshots taken at this
// instant. The pair is normalized so the lower user id is always user1; the
// unique pair index turns a concurrent duplicate insert into ErrChatExists.
func (r *ChatRepo) CreateChat(ctx context.Context, a, b models.ChatUser) (models.Chat, error) {
	if a.UserID == b.UserID {
		return models.Chat{}, errors.ErrSelfChat
	}
	if a.UserID > b.UserID {
		a, b = b, a
	}

	var chat models.Chat
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO chats (user1_id, user1_name, user1_number, user1_image_url,
                            user2_id, user2_name, user2_number, user2_image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+chatColumns,
		a.UserID, a.Name, a.Number, a.ImageURL,
		b.UserID, b.Name, b.Number, b.ImageURL).StructScan(&chat)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Chat{}, errors.ErrChatExists
		}
		return models.Chat{}, err
	}
	return chat, nil
}

// FindChatByNumbers looks up the chat for an unordered handle pair.
func (r *ChatRepo) FindChatByNumbers(ctx context.Context, numberA, numberB string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat,
		`SELECT `+chatColumns+` FROM chats
        WHERE (user1_number=$1 AND user2_number=$2) OR (user1_number=$2 AND user2_number=$1)`,
		numberA, numberB)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, errors.ErrChatNotFound
	}
	return chat, err
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, chatID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, errors.ErrChatNotFound
	}
	return chat, err
}

// ListChatsForUser returns the user's chats, most recent first, capped at limit.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int, limit int) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.SelectContext(ctx, &chats,
		`SELECT `+chatColumns+` FROM chats WHERE user1_id=$1 OR user2_id=$1
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	return chats, err
}

// IsParticipant checks whether a user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chats WHERE id=$1 AND (user1_id=$2 OR user2_id=$2))`, chatID, userID)
	return exists, err
}

// ContactIDs derives the contact set of a user from its chat memberships.
// The set always contains the user itself.
func (r *ChatRepo) ContactIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT user1_id, user2_id FROM chats WHERE user1_id=$1 OR user2_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []int{userID}
	seen := map[int]struct{}{userID: {}}
	for rows.Next() {
		var user1, user2 int
		if err := rows.Scan(&user1, &user2); err != nil {
			return nil, err
		}
		other := user1
		if other == userID {
			other = user2
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			contacts = append(contacts, other)
		}
	}
	return contacts, rows.Err()
}

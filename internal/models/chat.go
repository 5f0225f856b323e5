package models

import "time"

// ChatUser is a denormalized snapshot of a participant, taken at chat
// creation time. Snapshots are never refreshed after that.
type ChatUser struct {
	UserID   int     `db:"user_id" json:"user_id"`
	Name     string  `db:"name" json:"name"`
	Number   string  `db:"number" json:"number"`
	ImageURL *string `db:"image_url" json:"image_url,omitempty"`
}

// Chat represents a private chat between exactly two users.
type Chat struct {
	ID        int       `db:"id" json:"chat_id"`
	User1     ChatUser  `db:"user1" json:"user1"`
	User2     ChatUser  `db:"user2" json:"user2"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Counterpart returns the participant snapshot that is not userID.
func (c Chat) Counterpart(userID int) ChatUser {
	if c.User1.UserID == userID {
		return c.User2
	}
	return c.User1
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID int) bool {
	return c.User1.UserID == userID || c.User2.UserID == userID
}

// Snapshot copies the fields of u that chats keep denormalized.
func Snapshot(u User) ChatUser {
	return ChatUser{
		UserID:   u.ID,
		Name:     u.Name,
		Number:   u.Number,
		ImageURL: u.ImageURL,
	}
}

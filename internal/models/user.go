package models

import "time"

// User is a registered principal with its profile record.
type User struct {
	ID           int       `db:"id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Number       string    `db:"number" json:"number"`
	Email        string    `db:"email" json:"email"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Session is an issued bearer token.
type Session struct {
	Token     string    `db:"token" json:"token"`
	UserID    int       `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

package models

import "time"

// Status is a time-windowed media broadcast. A status is never mutated or
// deleted; it simply falls out of the visibility window.
type Status struct {
	ID        int       `db:"id" json:"id"`
	User      ChatUser  `db:"user" json:"user"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Timestamp int64     `db:"timestamp" json:"timestamp"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Visible reports whether the status falls inside the window ending at cutoff.
func (s Status) Visible(cutoff int64) bool {
	return s.Timestamp > cutoff
}

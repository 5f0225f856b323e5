package models

// Snapshot events broadcast through websockets. Every emission carries the
// full current result set, never a delta.

// ChatListEvent carries the caller's complete chat set.
type ChatListEvent struct {
	Type  string `json:"type"`
	Chats []Chat `json:"chats"`
}

// MessageListEvent carries the full re-sorted message log of one chat.
type MessageListEvent struct {
	Type     string    `json:"type"`
	ChatID   int       `json:"chat_id"`
	Messages []Message `json:"messages"`
}

// StatusListEvent carries the statuses currently visible to the caller.
type StatusListEvent struct {
	Type     string   `json:"type"`
	Statuses []Status `json:"statuses"`
}

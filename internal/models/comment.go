package models

// Comment is a message posted under an event. Comments are append-only.
type Comment struct {
	ID      string
	EventID string
	Author  string
	Content string

	// CreatedAt is the Unix timestamp when the comment was stored.
	CreatedAt int64
}

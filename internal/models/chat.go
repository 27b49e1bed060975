package models

import "time"

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatMessage is one transcript turn. The transcript is append-only and
// ordered by insertion; messages are never mutated, only cleared in bulk.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

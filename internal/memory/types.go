package memory

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxTurns is the conversation window capacity per user.
const DefaultMaxTurns = 10

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrInvalidRole = errors.New("turn role must be user or assistant")

// Turn is a single user or assistant utterance. Turns are never edited after
// they are written; the only mutations are insertion and eviction.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Seq breaks ordering ties between turns written within the same clock tick.
	Seq int64 `json:"seq"`
}

// Record is a turn as read back from storage. Content is nil for legacy rows
// that carry no text.
type Record struct {
	ID        string
	UserID    string
	Role      string
	Content   *string
	CreatedAt time.Time
	Seq       int64
}

// Message is a role/content pair handed to the language model as context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store holds the per-user turn log.
type Store interface {
	InsertTurn(ctx context.Context, turn Turn) (Turn, error)
	// OldestTurns returns up to limit turns for the user ordered by created_at ascending.
	OldestTurns(ctx context.Context, userID string, limit int) ([]Record, error)
	TurnIDsNewestFirst(ctx context.Context, userID string) ([]string, error)
	// DeleteTurns removes the given ids. Ids that no longer exist are ignored.
	DeleteTurns(ctx context.Context, ids []string) error
	DeleteUserTurns(ctx context.Context, userID string) error
	Close() error
}

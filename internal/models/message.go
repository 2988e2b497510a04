package models

import (
	"time"

	"github.com/lib/pq"
)

// Message type values.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message is a chat message. Immutable after creation except for read_by
// appends. At least one of Content and FilePath is set.
type Message struct {
	ID        int           `db:"id" json:"id"`
	ChatID    int           `db:"chat_id" json:"chat_id"`
	SenderID  int           `db:"sender_id" json:"user_id"`
	Type      string        `db:"type" json:"type"`
	Content   *string       `db:"content" json:"content"`
	FilePath  *string       `db:"file_path" json:"file_path"`
	ReadBy    pq.Int64Array `db:"read_by" json:"read_id"`
	CreatedAt time.Time     `db:"created_at" json:"timestamp"`
}

// Reaction is an emoji reaction on a message. A user may react to the same
// message more than once; there is no uniqueness constraint.
type Reaction struct {
	ID        int `db:"id" json:"id"`
	MessageID int `db:"message_id" json:"message_id"`
	UserID    int `db:"user_id" json:"user_id"`
	Content   int `db:"content" json:"content"`
}

// ReactionView pairs a reaction code with its sender for history responses.
type ReactionView struct {
	Content int         `json:"content"`
	Sender  UserSummary `json:"sender"`
}

// MessageWithReactions is the history view of a message.
type MessageWithReactions struct {
	Message
	Reactions []ReactionView `json:"reactions"`
}

package models

// Chat type values.
const (
	ChatTypeDirect = "direct"
	ChatTypeGroup  = "group"
)

// Chat is the minimal chat projection used both as the durable row and as the
// chat summary in outbound events (id, name, type, photo).
type Chat struct {
	ID    int     `db:"id" json:"id"`
	Name  *string `db:"name" json:"name"`
	Photo *string `db:"photo" json:"photo"`
	Type  string  `db:"type" json:"type"`
}

// ChatWithMembers is the REST view of a chat including persisted membership.
type ChatWithMembers struct {
	Chat
	Members []UserSummary `json:"members"`
}

package models

// Inbound event names.
const (
	EventNewMessage  = "new_message"
	EventBeginChat   = "begin_chat"
	EventLeaveChat   = "leave_chat"
	EventSetReaction = "set_reaction"
)

// ClientEvent is the envelope for inbound websocket frames. Event selects the
// variant; only the fields belonging to that variant are read, everything else
// is ignored.
type ClientEvent struct {
	Event      string `json:"event"`
	ChatID     int    `json:"chat_id,omitempty"`
	Message    string `json:"message,omitempty"`
	MessageID  int    `json:"message_id,omitempty"`
	ReactionID int    `json:"reaction_id,omitempty"`
}

// AckEvent acknowledges a completed handshake.
type AckEvent struct {
	Event string `json:"event"`
	Data  string `json:"data,omitempty"`
}

// ErrorEvent is delivered only to the connection whose request failed.
type ErrorEvent struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// MessageEvent is the outbound new_message broadcast. Message is set for text
// messages; Filename and URL for upload-originated ones.
type MessageEvent struct {
	Event     string      `json:"event"`
	User      UserSummary `json:"user"`
	Chat      Chat        `json:"chat"`
	Message   string      `json:"message,omitempty"`
	Filename  string      `json:"filename,omitempty"`
	URL       string      `json:"url,omitempty"`
	MessageID int         `json:"message_id"`
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// ReactionEvent is the outbound set_reaction broadcast.
type ReactionEvent struct {
	Event     string      `json:"event"`
	User      UserSummary `json:"user"`
	Chat      Chat        `json:"chat"`
	MessageID int         `json:"message_id"`
	Reaction  int         `json:"reaction"`
}

package ws

import "time"

// ConnInfo is the session binding for one live connection, created at
// handshake and destroyed on disconnect.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Conn is the subset of the websocket connection the hub writes to.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub owns the live room registry and the session bindings. All state is
// process-local and lost on restart; reconnecting clients re-join the rooms
// they care about. Room membership here is independent of persisted chat
// membership.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[int]map[Conn]bool
	byConn   map[Conn]map[int]bool
	sessions map[Conn]ConnInfo
	log      zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[int]map[Conn]bool),
		byConn:   make(map[Conn]map[int]bool),
		sessions: make(map[Conn]ConnInfo),
		log:      logger.With().Str("component", "hub").Logger(),
	}
}

// Bind records the session binding created by a successful handshake.
func (h *Hub) Bind(conn Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[conn] = info
}

// Unbind removes the session binding; it reports whether one existed, so
// disconnect cleanup stays idempotent.
func (h *Hub) Unbind(conn Conn) (ConnInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	info, ok := h.sessions[conn]
	delete(h.sessions, conn)
	return info, ok
}

// Session resolves the connection's session binding.
func (h *Hub) Session(conn Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.sessions[conn]
	return info, ok
}

// Join adds the connection to a room. Idempotent; a connection may be in any
// number of rooms.
func (h *Hub) Join(chatID int, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[Conn]bool)
	}
	h.rooms[chatID][conn] = true
	if _, ok := h.byConn[conn]; !ok {
		h.byConn[conn] = make(map[int]bool)
	}
	h.byConn[conn][chatID] = true
}

// Leave removes the connection from a room. Idempotent; leaving a room the
// connection never joined is a no-op.
func (h *Hub) Leave(chatID int, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(chatID, conn)
}

// LeaveAll removes the connection from every room it joined.
func (h *Hub) LeaveAll(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for chatID := range h.byConn[conn] {
		h.leaveLocked(chatID, conn)
	}
}

func (h *Hub) leaveLocked(chatID int, conn Conn) {
	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if chats, ok := h.byConn[conn]; ok {
		delete(chats, chatID)
		if len(chats) == 0 {
			delete(h.byConn, conn)
		}
	}
}

// MembersOf returns a snapshot of the room's current connections. Joins and
// leaves that completed before this call are reflected.
func (h *Hub) MembersOf(chatID int) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]Conn, 0, len(h.rooms[chatID]))
	for conn := range h.rooms[chatID] {
		conns = append(conns, conn)
	}
	return conns
}

// Broadcast sends the event to every connection in the room at the moment of
// the call. A connection that fails to take the write is closed and dropped
// from the room; remaining members are unaffected.
func (h *Hub) Broadcast(chatID int, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Int("chat_id", chatID).Msg("marshal broadcast event")
		return
	}

	for _, conn := range h.MembersOf(chatID) {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warn().Err(err).Int("chat_id", chatID).Msg("websocket write error")
			_ = conn.Close()
			h.Leave(chatID, conn)
		}
	}
}

// SendTo writes an event to a single connection, used for handshake acks and
// error reports to the originating connection.
func (h *Hub) SendTo(conn Conn, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame written to it and can be told to fail writes.
type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	writeErr error
	closed   bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func TestHubJoinLeave(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}

	hub.Join(1, conn)
	require.Len(t, hub.MembersOf(1), 1)

	hub.Leave(1, conn)
	assert.Empty(t, hub.MembersOf(1))
}

func TestHubJoinIdempotent(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}

	hub.Join(1, conn)
	hub.Join(1, conn)

	assert.Len(t, hub.MembersOf(1), 1)
}

func TestHubLeaveWithoutJoin(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}

	hub.Leave(42, conn)

	assert.Empty(t, hub.MembersOf(42))
}

func TestHubJoinAfterLeaveNetEffect(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}

	hub.Join(7, conn)
	hub.Leave(7, conn)
	hub.Join(7, conn)

	assert.Len(t, hub.MembersOf(7), 1)
}

func TestHubLeaveAll(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}
	other := &fakeConn{}

	hub.Join(1, conn)
	hub.Join(2, conn)
	hub.Join(2, other)

	hub.LeaveAll(conn)

	assert.Empty(t, hub.MembersOf(1))
	require.Len(t, hub.MembersOf(2), 1)
	assert.Same(t, other, hub.MembersOf(2)[0].(*fakeConn))
}

func TestHubSessionBinding(t *testing.T) {
	hub := newTestHub()
	conn := &fakeConn{}

	_, ok := hub.Session(conn)
	require.False(t, ok)

	hub.Bind(conn, ConnInfo{ConnID: "abc", UserID: 5})

	info, ok := hub.Session(conn)
	require.True(t, ok)
	assert.Equal(t, 5, info.UserID)

	info, ok = hub.Unbind(conn)
	require.True(t, ok)
	assert.Equal(t, "abc", info.ConnID)

	_, ok = hub.Unbind(conn)
	assert.False(t, ok)
}

func TestHubBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := newTestHub()
	member := &fakeConn{}
	outsider := &fakeConn{}

	hub.Join(1, member)
	hub.Join(2, outsider)

	hub.Broadcast(1, map[string]string{"event": "ping"})

	require.Len(t, member.Frames(), 1)
	assert.Empty(t, outsider.Frames())

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(member.Frames()[0], &decoded))
	assert.Equal(t, "ping", decoded["event"])
}

func TestHubBroadcastDropsFailingConn(t *testing.T) {
	hub := newTestHub()
	healthy := &fakeConn{}
	broken := &fakeConn{writeErr: errors.New("write: broken pipe")}

	hub.Join(1, healthy)
	hub.Join(1, broken)

	hub.Broadcast(1, map[string]string{"event": "ping"})

	assert.Len(t, healthy.Frames(), 1)
	assert.True(t, broken.Closed())
	assert.Len(t, hub.MembersOf(1), 1)
}

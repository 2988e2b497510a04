package presence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	states map[int]bool
	writes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[int]bool)}
}

func (s *fakeStore) SetOnline(_ context.Context, userID int, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = online
	s.writes++
	return nil
}

func (s *fakeStore) state(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

func TestTrackerSetOnline(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	require.NoError(t, tracker.SetOnline(context.Background(), 1, true))
	assert.True(t, store.state(1))

	require.NoError(t, tracker.SetOnline(context.Background(), 1, false))
	assert.False(t, store.state(1))
}

func TestTrackerConnectThenDisconnectEndsOffline(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.SetOnline(context.Background(), 1, true)
			_ = tracker.SetOnline(context.Background(), 1, false)
		}()
		wg.Wait()
		assert.False(t, store.state(1))
	}
}

func TestTrackerIndependentUsers(t *testing.T) {
	store := newFakeStore()
	tracker := NewTracker(store)

	var wg sync.WaitGroup
	for userID := 1; userID <= 10; userID++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = tracker.SetOnline(context.Background(), id, true)
		}(userID)
	}
	wg.Wait()

	for userID := 1; userID <= 10; userID++ {
		assert.True(t, store.state(userID))
	}
}

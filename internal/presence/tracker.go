package presence

import (
	"context"
	"sync"
)

// Store is the persistence hook for the online flag.
type Store interface {
	SetOnline(ctx context.Context, userID int, online bool) error
}

// Tracker serializes online-flag writes per user so that a connect followed by
// a disconnect always leaves the last write in place. Writes for different
// users do not contend. The flag itself stays a plain boolean: a user is
// expected to hold one live connection, and that assumption is not enforced
// here.
type Tracker struct {
	store Store

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// NewTracker constructs a Tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store: store,
		locks: make(map[int]*sync.Mutex),
	}
}

// SetOnline persists the user's online flag. Best effort: the caller decides
// whether a failure is fatal.
func (t *Tracker) SetOnline(ctx context.Context, userID int, online bool) error {
	lock := t.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return t.store.SetOnline(ctx, userID, online)
}

func (t *Tracker) lockFor(userID int) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if lock, ok := t.locks[userID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	t.locks[userID] = lock
	return lock
}

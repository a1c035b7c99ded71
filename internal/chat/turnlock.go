package chat

import "sync"

// turnLocks serializes conversational turns per session. Two messages for
// the same session are processed one after the other; different sessions
// proceed in parallel.
type turnLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newTurnLocks() *turnLocks {
	return &turnLocks{locks: make(map[string]*sessionLock)}
}

// Lock acquires the lock for a session, creating it on first use.
func (t *turnLocks) Lock(sessionID string) {
	t.mu.Lock()
	l, ok := t.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		t.locks[sessionID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the session lock and evicts it when no turn is waiting.
func (t *turnLocks) Unlock(sessionID string) {
	t.mu.Lock()
	l, ok := t.locks[sessionID]
	if !ok {
		t.mu.Unlock()
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(t.locks, sessionID)
	}
	t.mu.Unlock()

	l.mu.Unlock()
}

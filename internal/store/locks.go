package store

import "sync"

// SessionLocks hands out one mutex per session id so read-modify-write
// sequences on the same session are serialized while different sessions
// proceed in parallel.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionLocks returns an empty lock table.
func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given session id, creating it on first
// use. The caller must call the returned unlock function.
func (l *SessionLocks) Lock(sessionID string) func() {
	l.mu.Lock()
	m, exists := l.locks[sessionID]
	if !exists {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

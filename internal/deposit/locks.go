package deposit

import "sync"

// Locks serializes deposit state transitions per user. Operations for
// different users take different mutexes and never block one another.
// Entries are retained for the life of the process; the per-user footprint
// is a single mutex.
type Locks struct {
	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewLocks creates an empty per-user lock table.
func NewLocks() *Locks {
	return &Locks{users: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for userID and returns its unlock function.
func (l *Locks) Lock(userID string) func() {
	l.mu.Lock()
	m, ok := l.users[userID]
	if !ok {
		m = &sync.Mutex{}
		l.users[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

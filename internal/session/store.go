package session

import (
	"context"
	"sync"
)

// Store keeps the per-user mode flag. Users without an entry are in DefaultMode.
type Store interface {
	Mode(ctx context.Context, userID int64) (Mode, error)
	SetMode(ctx context.Context, userID int64, mode Mode) error
}

// Locks serializes work per user id. Entries are dropped once nobody holds
// or waits on them, so the map only grows with concurrent users.
type Locks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocks() *Locks {
	return &Locks{entries: make(map[int64]*lockEntry)}
}

// Lock blocks until userID's critical section is free and returns its release func.
func (l *Locks) Lock(userID int64) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &lockEntry{}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, userID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *Locks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

package session

import (
	"context"
	"sync"
)

// MemoryStore keeps modes for the process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	modes map[int64]Mode
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{modes: make(map[int64]Mode)}
}

func (m *MemoryStore) Mode(_ context.Context, userID int64) (Mode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mode, ok := m.modes[userID]; ok {
		return mode, nil
	}
	return DefaultMode, nil
}

func (m *MemoryStore) SetMode(_ context.Context, userID int64, mode Mode) error {
	if _, err := ParseMode(mode.String()); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[userID] = mode
	return nil
}

// Len reports how many users have an explicit mode.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.modes)
}

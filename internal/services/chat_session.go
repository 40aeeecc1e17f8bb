package services

import (
	"context"
	"sync"
)

// ModeStore remembers which conversations are in supervisor mode.
type ModeStore interface {
	IsSupervisor(ctx context.Context, conversationID string) (bool, error)
	SetSupervisor(ctx context.Context, conversationID string, on bool) error
}

type memoryModeStore struct {
	mu    sync.RWMutex
	modes map[string]bool
}

func NewMemoryModeStore() ModeStore {
	return &memoryModeStore{modes: map[string]bool{}}
}

func (m *memoryModeStore) IsSupervisor(_ context.Context, conversationID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modes[conversationID], nil
}

func (m *memoryModeStore) SetSupervisor(_ context.Context, conversationID string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if on {
		m.modes[conversationID] = true
	} else {
		delete(m.modes, conversationID)
	}
	return nil
}

package repository

import (
	"sync"

	"github.com/ponyo877/sharepad/server/usecase"
)

// MemoryStore is the volatile catalog backend for no-persistence mode. It
// starts empty on every run, so room existence does not survive a restart.
// Persistence errors cannot occur by construction.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemoryStore() usecase.CatalogStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (m *MemoryStore) Record(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[roomID] = struct{}{}
	return nil
}

func (m *MemoryStore) Remove(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, roomID)
	return nil
}

func (m *MemoryStore) LoadAll() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

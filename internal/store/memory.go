package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process memory. Used in tests and for dry
// runs; its lifecycle is scoped to a single batch run, never shared between
// runs.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (m *MemoryStore) Find(_ context.Context, name string) (*FileRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[name]; !ok {
		return nil, fmt.Errorf("find %s: %w", name, ErrNotFound)
	}
	return &FileRef{ID: name, Name: name}, nil
}

func (m *MemoryStore) Read(_ context.Context, ref *FileRef) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[ref.Name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", ref.Name, ErrNotFound)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryStore) Write(_ context.Context, name string, content []byte) (*FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	m.files[name] = stored
	return &FileRef{ID: name, Name: name}, nil
}

// Len reports the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

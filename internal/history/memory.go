package history

import (
	"context"
	"sync"

	"placementprep/internal/types"
)

// MemoryRepository keeps entries for the lifetime of the process
type MemoryRepository struct {
	mu  sync.RWMutex
	set entrySet
}

// NewMemoryRepository returns an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (types.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.get(id)
}

func (r *MemoryRepository) Save(_ context.Context, entry types.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.add(entry)
}

func (r *MemoryRepository) Update(_ context.Context, entry types.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.replace(entry)
}

func (r *MemoryRepository) List(_ context.Context) ([]types.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.list(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.remove(id)
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.reset(nil)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

package repository

import (
	"context"
	"sync"

	"festboard/internal/domain"
)

// MemorySnapshotRepository keeps the snapshot in process memory. It
// backs tests and single-node deployments that do not need durability.
type MemorySnapshotRepository struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
}

// NewMemorySnapshotRepository creates an empty in-memory store.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snapshot: &domain.Snapshot{}}
}

// Load retrieves a copy of the stored snapshot.
func (r *MemorySnapshotRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Clone(), nil
}

// Save replaces the stored snapshot with a copy of the given one.
func (r *MemorySnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snapshot.Clone()
	return nil
}

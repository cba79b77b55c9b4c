package service

import (
	"context"
	"sync"

	"festboard/internal/domain"
	"festboard/internal/repository"
)

// SnapshotStore serializes load-modify-save cycles against the
// snapshot repository. Every mutation goes through Update, so
// concurrent writers never interleave partial snapshots.
type SnapshotStore struct {
	repo repository.SnapshotRepository
	mu   sync.Mutex
}

func NewSnapshotStore(repo repository.SnapshotRepository) *SnapshotStore {
	return &SnapshotStore{repo: repo}
}

// View loads the current snapshot for read-only use.
func (s *SnapshotStore) View(ctx context.Context) (*domain.Snapshot, error) {
	return s.repo.Load(ctx)
}

// Update runs fn against the current snapshot and persists the snapshot
// fn returns. If fn returns an error nothing is written. fn returning
// the input snapshot unchanged is allowed; it is saved as-is.
func (s *SnapshotStore) Update(ctx context.Context, fn func(*domain.Snapshot) (*domain.Snapshot, error)) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	next, err := fn(snapshot)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

package repository

import (
	"context"

	"festboard/internal/domain"
)

// SnapshotRepository is the engine's only persistence contract: read
// the full entity snapshot, or overwrite it atomically. The engine
// never performs partial writes; it hands the caller a complete new
// snapshot to persist.
type SnapshotRepository interface {
	// Load retrieves the complete snapshot. A fresh store yields an
	// empty snapshot, not an error.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save persists the snapshot, replacing whatever was stored before.
	// Either the whole snapshot is persisted or none of it.
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

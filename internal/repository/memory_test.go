package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festboard/internal/domain"
)

func TestMemorySnapshotRepository_EmptyLoad(t *testing.T) {
	repo := NewMemorySnapshotRepository()

	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Teams)
	assert.False(t, snapshot.VotingSettings.IsOpen)
}

func TestMemorySnapshotRepository_IsolatesCallers(t *testing.T) {
	repo := NewMemorySnapshotRepository()
	ctx := context.Background()

	original := &domain.Snapshot{
		Teams: []domain.Team{{Name: "Japan"}},
	}
	require.NoError(t, repo.Save(ctx, original))

	// Mutating the saved snapshot after the fact must not leak in.
	original.Teams[0].Name = "Atlantis"

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Teams, 1)
	assert.Equal(t, "Japan", loaded.Teams[0].Name)

	// Mutating a loaded snapshot must not affect later loads.
	loaded.Teams[0].Name = "Atlantis"
	reloaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Japan", reloaded.Teams[0].Name)
}

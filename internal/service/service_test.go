package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"festboard/internal/domain"
	"festboard/internal/repository"
	"festboard/pkg/redis"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// flakySaveRepository fails one Save on demand, simulating a transient
// persistence error.
type flakySaveRepository struct {
	repository.SnapshotRepository
	failNextSave bool
}

func (r *flakySaveRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if r.failNextSave {
		r.failNextSave = false
		return errors.New("connection reset by peer")
	}
	return r.SnapshotRepository.Save(ctx, snapshot)
}

func seedSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Teams: []domain.Team{
			{Name: "Japan", Flag: "🇯🇵"},
			{Name: "Malaysia", Flag: "🇲🇾"},
			{Name: "Spain", Flag: "🇪🇸"},
		},
		Activities: []domain.Activity{
			{
				ID:   "main-performance",
				Name: "Main Performance",
				Type: domain.ActivityJudged,
				Criteria: []domain.Criterion{
					{ID: "c1", Name: "Creativity", MaxPoints: 50},
					{ID: "c2", Name: "Synchronization", MaxPoints: 50},
				},
			},
			{
				ID:        "booth-award",
				Name:      "Best Booth Decoration",
				Type:      domain.ActivityDirect,
				MaxPoints: 50,
			},
		},
		Students: []domain.Student{
			{ID: "STU-001", Name: "Aisha"},
			{ID: "STU-002", Name: "Omar"},
		},
		VotingSettings: domain.VotingSettings{Mode: domain.VotingPublic},
	}
}

func setupStore(t *testing.T) *SnapshotStore {
	t.Helper()
	repo := repository.NewMemorySnapshotRepository()
	require.NoError(t, repo.Save(context.Background(), seedSnapshot()))
	return NewSnapshotStore(repo)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

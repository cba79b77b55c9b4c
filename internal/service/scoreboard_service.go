package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/pkg/redis"
)

// ScoreboardService exposes score submission, approvals and the
// aggregated leaderboard. The leaderboard is recomputed from the
// snapshot on demand and cached in Redis for a short window; every
// mutation invalidates the cache.
type ScoreboardService struct {
	store  *SnapshotStore
	redis  *redis.Client
	clock  engine.Clock
	logger *zap.Logger
}

func NewScoreboardService(store *SnapshotStore, redisClient *redis.Client, clock engine.Clock, logger *zap.Logger) *ScoreboardService {
	return &ScoreboardService{
		store:  store,
		redis:  redisClient,
		clock:  clock,
		logger: logger,
	}
}

// Leaderboard returns the aggregated standings, served from cache when
// fresh. A cache failure falls back to recomputing from the snapshot.
func (s *ScoreboardService) Leaderboard(ctx context.Context) ([]domain.AggregatedResult, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyLeaderboard())
		if err == nil && cached != "" {
			var results []domain.AggregatedResult
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return results, nil
			}
			s.logger.Warn("Discarding malformed leaderboard cache entry")
		}
	}

	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	results := engine.Aggregate(snapshot)

	s.cacheLeaderboard(ctx, results)
	return results, nil
}

func (s *ScoreboardService) cacheLeaderboard(ctx context.Context, results []domain.AggregatedResult) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyLeaderboard(), payload, redis.TTLLeaderboard); err != nil {
		s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}
}

func (s *ScoreboardService) invalidateLeaderboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyLeaderboard()); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// SubmitScore records a judge's rubric score, replacing any previous
// entry by the same judge for the same activity and team.
func (s *ScoreboardService) SubmitScore(ctx context.Context, sub engine.ScoreSubmission) (*domain.ScoreEntry, error) {
	var entry *domain.ScoreEntry
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, e, err := engine.SubmitScoreEntry(snapshot, sub, s.clock.Now())
		if err != nil {
			return nil, err
		}
		entry = e
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLeaderboard(ctx)
	s.logger.Info("Score entry recorded",
		zap.String("activity_id", entry.ActivityID),
		zap.String("judge", entry.JudgeName),
		zap.String("team", entry.TeamName),
		zap.Int("total_points", entry.TotalPoints))
	return entry, nil
}

// SubmitDirectorAward records a direct award, replacing any previous
// award for the same activity and team.
func (s *ScoreboardService) SubmitDirectorAward(ctx context.Context, sub engine.AwardSubmission) (*domain.DirectorAward, error) {
	var award *domain.DirectorAward
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, a, err := engine.SubmitDirectorAward(snapshot, sub, s.clock.Now())
		if err != nil {
			return nil, err
		}
		award = a
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLeaderboard(ctx)
	s.logger.Info("Director award recorded",
		zap.String("activity_id", award.ActivityID),
		zap.String("team", award.TeamName),
		zap.Int("points", award.Points))
	return award, nil
}

// SubmitAdjustment files a bonus or penalty in the pending state.
func (s *ScoreboardService) SubmitAdjustment(ctx context.Context, sub engine.AdjustmentSubmission) (*domain.Adjustment, error) {
	var adjustment *domain.Adjustment
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, a, err := engine.SubmitAdjustment(snapshot, sub, s.clock.Now())
		if err != nil {
			return nil, err
		}
		adjustment = a
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	// Pending adjustments do not affect totals, so no invalidation.
	s.logger.Info("Adjustment submitted",
		zap.String("kind", string(adjustment.Kind)),
		zap.String("team", adjustment.TeamName),
		zap.Int("points", adjustment.Points))
	return adjustment, nil
}

// UpdateAdjustment edits a still-pending adjustment's points or reason.
func (s *ScoreboardService) UpdateAdjustment(ctx context.Context, kind domain.AdjustmentKind, id string, points int, reason string) error {
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		return engine.UpdatePendingAdjustment(snapshot, kind, id, points, reason)
	})
	return err
}

// SetAdjustmentStatus moves a pending adjustment to approved or
// rejected. The decision is final.
func (s *ScoreboardService) SetAdjustmentStatus(ctx context.Context, kind domain.AdjustmentKind, id string, status domain.AdjustmentStatus) error {
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		return engine.SetAdjustmentStatus(snapshot, kind, id, status)
	})
	if err != nil {
		return err
	}

	s.invalidateLeaderboard(ctx)
	s.logger.Info("Adjustment decided",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("status", string(status)))
	return nil
}

// DeleteAdjustment removes an adjustment in any state.
func (s *ScoreboardService) DeleteAdjustment(ctx context.Context, kind domain.AdjustmentKind, id string) error {
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		return engine.DeleteAdjustment(snapshot, kind, id)
	})
	if err != nil {
		return err
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

// ListAdjustments returns all bonuses or penalties, every status
// included.
func (s *ScoreboardService) ListAdjustments(ctx context.Context, kind domain.AdjustmentKind) ([]domain.Adjustment, error) {
	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, err
	}
	if kind == domain.KindPenalty {
		return snapshot.Penalties, nil
	}
	return snapshot.Bonuses, nil
}

// ListTeams returns the team roster in snapshot order.
func (s *ScoreboardService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Teams, nil
}

// ListActivities returns every activity definition.
func (s *ScoreboardService) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Activities, nil
}

// ExportSnapshot returns the complete snapshot for backup.
func (s *ScoreboardService) ExportSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return s.store.View(ctx)
}

// ImportSnapshot replaces all state with the given snapshot and drops
// every cache entry derived from the old one.
func (s *ScoreboardService) ImportSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	_, err := s.store.Update(ctx, func(*domain.Snapshot) (*domain.Snapshot, error) {
		return snapshot, nil
	})
	if err != nil {
		return err
	}

	if s.redis != nil {
		if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyLeaderboard()); err != nil {
			s.logger.Warn("Failed to drop leaderboard cache after import", zap.Error(err))
		}
		// The imported snapshot may carry a different session, so the
		// status cache, voter markers and finalize locks all go stale.
		if err := s.redis.InvalidatePattern(ctx, s.redis.KeyBuilder.KeyCustom("voting:*")); err != nil {
			s.logger.Warn("Failed to drop voting caches after import", zap.Error(err))
		}
	}
	s.logger.Info("Snapshot imported",
		zap.Int("teams", len(snapshot.Teams)),
		zap.Int("activities", len(snapshot.Activities)),
		zap.Int("score_entries", len(snapshot.ScoreEntries)))
	return nil
}

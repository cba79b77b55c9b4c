package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/pkg/redis"
)

// VotingService manages the voting session lifecycle: opening a
// session, admitting votes, and finalizing the winner. A background
// watcher polls the session deadline and finalizes automatically once
// it passes; finalization is idempotent, so the watcher and a manual
// close racing each other is harmless.
type VotingService struct {
	store  *SnapshotStore
	redis  *redis.Client
	clock  engine.Clock
	logger *zap.Logger

	pollInterval time.Duration
	stopWatcher  chan struct{}
	mu           sync.Mutex
	isRunning    bool
}

func NewVotingService(store *SnapshotStore, redisClient *redis.Client, clock engine.Clock, pollInterval time.Duration, logger *zap.Logger) *VotingService {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &VotingService{
		store:        store,
		redis:        redisClient,
		clock:        clock,
		logger:       logger,
		pollInterval: pollInterval,
		stopWatcher:  make(chan struct{}),
	}
}

// Status returns the live session view, served from cache when fresh.
func (s *VotingService) Status(ctx context.Context) (*domain.VotingStatus, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyVotingStatus())
		if err == nil && cached != "" {
			var status domain.VotingStatus
			if err := json.Unmarshal([]byte(cached), &status); err == nil {
				return &status, nil
			}
		}
	}

	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, err
	}

	standings, total := engine.SessionStandings(snapshot)
	status := &domain.VotingStatus{
		Settings:   snapshot.VotingSettings,
		TotalVotes: total,
		Standings:  standings,
		LastUpdate: s.clock.Now(),
	}

	if s.redis != nil {
		if payload, err := json.Marshal(status); err == nil {
			if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyVotingStatus(), payload, redis.TTLVotingStatus); err != nil {
				s.logger.Warn("Failed to cache voting status", zap.Error(err))
			}
		}
	}
	return status, nil
}

// Open starts a new voting session with a fresh session id.
func (s *VotingService) Open(ctx context.Context, params engine.OpenSessionParams) (*domain.VotingSettings, error) {
	var settings domain.VotingSettings
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, err := engine.OpenSession(snapshot, params, s.clock.Now())
		if err != nil {
			return nil, err
		}
		settings = next.VotingSettings
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStatus(ctx)
	s.logger.Info("Voting session opened",
		zap.String("session_id", settings.SessionID),
		zap.String("name", settings.Name),
		zap.String("mode", string(settings.Mode)),
		zap.Time("deadline", *settings.Deadline),
		zap.Int("winner_points", settings.WinnerPoints))
	return &settings, nil
}

// Vote admits one vote for the open session. A Redis marker rejects
// repeat voters before the snapshot is ever loaded; the engine's own
// dedup check stays authoritative in case the marker expires.
func (s *VotingService) Vote(ctx context.Context, teamName, voterIdentifier string) (*domain.PublicVote, error) {
	if s.redis != nil {
		snapshot, err := s.store.View(ctx)
		if err == nil && snapshot.VotingSettings.IsOpen {
			voteKey := s.redis.KeyBuilder.KeyVoterVoted(snapshot.VotingSettings.SessionID, voterIdentifier)
			exists, err := s.redis.Exists(ctx, voteKey)
			if err == nil && exists > 0 {
				return nil, domain.ErrDuplicateVote
			}
		}
	}

	var vote *domain.PublicVote
	var sessionID string
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, v, err := engine.AdmitVote(snapshot, teamName, voterIdentifier, s.clock.Now())
		if err != nil {
			return nil, err
		}
		vote = v
		sessionID = next.VotingSettings.SessionID
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		voteKey := s.redis.KeyBuilder.KeyVoterVoted(sessionID, voterIdentifier)
		if _, err := s.redis.SetNX(ctx, voteKey, vote.TeamName, redis.TTLVoterVote); err != nil {
			s.logger.Warn("Failed to mark voter in cache", zap.Error(err))
		}
	}

	s.invalidateStatus(ctx)
	s.logger.Info("Vote admitted",
		zap.String("session_id", vote.SessionID),
		zap.String("team", vote.TeamName))
	return vote, nil
}

// Close finalizes the open session: the team with the strictly highest
// vote count receives the winner award. Closing an already closed
// session is a no-op, which makes the deadline watcher and manual close
// safe to race. A per-session Redis lock additionally keeps multiple
// instances from finalizing the same session twice.
func (s *VotingService) Close(ctx context.Context, closedBy string) (engine.FinalizeResult, error) {
	var lockKey string
	if s.redis != nil {
		snapshot, err := s.store.View(ctx)
		if err == nil && snapshot.VotingSettings.IsOpen {
			lockKey = s.redis.KeyBuilder.KeySessionFinalized(snapshot.VotingSettings.SessionID)
			acquired, err := s.redis.SetNX(ctx, lockKey, closedBy, redis.TTLSessionFinalized)
			if err == nil && !acquired {
				return engine.FinalizeResult{}, nil
			}
		}
	}

	var result engine.FinalizeResult
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		next, r, err := engine.FinalizeSession(snapshot, closedBy, s.clock.Now())
		if err != nil {
			return nil, err
		}
		result = r
		return next, nil
	})
	if err != nil {
		// The session is still open; release the lock so a retry or the
		// deadline watcher can finalize it.
		if lockKey != "" {
			if delErr := s.redis.Delete(ctx, lockKey); delErr != nil {
				s.logger.Warn("Failed to release finalize lock", zap.Error(delErr))
			}
		}
		return engine.FinalizeResult{}, err
	}

	if result.Finalized {
		s.invalidateStatus(ctx)
		s.invalidateLeaderboard(ctx)
		if result.Award != nil {
			s.logger.Info("Voting session finalized",
				zap.String("winner", result.Award.TeamName),
				zap.Int("points", result.Award.Points),
				zap.String("closed_by", closedBy))
		} else {
			s.logger.Info("Voting session finalized with no votes",
				zap.String("closed_by", closedBy))
		}
	}
	return result, nil
}

// ListAwards returns every award granted by finalized sessions.
func (s *VotingService) ListAwards(ctx context.Context) ([]domain.VotingAward, error) {
	snapshot, err := s.store.View(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.VotingAwards, nil
}

// DeleteAward revokes a previously granted session award.
func (s *VotingService) DeleteAward(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, func(snapshot *domain.Snapshot) (*domain.Snapshot, error) {
		return engine.DeleteVotingAward(snapshot, id)
	})
	if err != nil {
		return err
	}
	s.invalidateLeaderboard(ctx)
	return nil
}

func (s *VotingService) invalidateStatus(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyVotingStatus()); err != nil {
		s.logger.Warn("Failed to invalidate voting status cache", zap.Error(err))
	}
}

func (s *VotingService) invalidateLeaderboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyLeaderboard()); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// Start launches the deadline watcher.
func (s *VotingService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	go s.watchDeadline(ctx)
	s.isRunning = true
	s.logger.Info("Voting deadline watcher started",
		zap.Duration("poll_interval", s.pollInterval))
	return nil
}

// Stop shuts the deadline watcher down.
func (s *VotingService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stopWatcher)
	s.isRunning = false
	s.logger.Info("Voting deadline watcher stopped")
	return nil
}

func (s *VotingService) watchDeadline(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkDeadline(ctx)
		case <-s.stopWatcher:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *VotingService) checkDeadline(ctx context.Context) {
	snapshot, err := s.store.View(ctx)
	if err != nil {
		s.logger.Warn("Deadline check failed to load snapshot", zap.Error(err))
		return
	}
	if !engine.DeadlineReached(snapshot, s.clock.Now()) {
		return
	}

	s.logger.Info("Voting deadline passed, finalizing session",
		zap.String("session_id", snapshot.VotingSettings.SessionID))
	if _, err := s.Close(ctx, "system"); err != nil {
		s.logger.Error("Automatic finalize failed", zap.Error(err))
	}
}

package engine

import (
	"time"

	"github.com/google/uuid"

	"festboard/internal/domain"
)

// ScoreSubmission is one judge's rubric score for a team, keyed by
// criterion id.
type ScoreSubmission struct {
	ActivityID string
	JudgeName  string
	TeamName   string
	Points     map[string]int
}

// SubmitScoreEntry validates and records a judge score. A resubmission
// for the same (judge, activity, team) triple replaces the previous
// entry rather than appending a second one.
func SubmitScoreEntry(s *domain.Snapshot, sub ScoreSubmission, now time.Time) (*domain.Snapshot, *domain.ScoreEntry, error) {
	if sub.TeamName == "" {
		return nil, nil, domain.ErrEmptyTeam
	}
	if _, ok := s.TeamByName(sub.TeamName); !ok {
		return nil, nil, domain.ErrUnknownTeam
	}
	activity, ok := s.ActivityByID(sub.ActivityID)
	if !ok || activity.Type != domain.ActivityJudged {
		return nil, nil, domain.ErrUnknownActivity
	}
	for id, points := range sub.Points {
		criterion, ok := activity.CriterionByID(id)
		if !ok {
			return nil, nil, domain.ErrUnknownCriterion
		}
		if points < 0 || points > criterion.MaxPoints {
			return nil, nil, domain.ErrPointsExceedMax
		}
	}

	entry := domain.ScoreEntry{
		ID:         uuid.NewString(),
		ActivityID: sub.ActivityID,
		JudgeName:  sub.JudgeName,
		TeamName:   sub.TeamName,
		Points:     sub.Points,
		Timestamp:  now,
	}
	entry.TotalPoints = entry.SumPoints()

	next := s.Clone()
	kept := next.ScoreEntries[:0]
	for _, e := range next.ScoreEntries {
		if e.JudgeName == sub.JudgeName && e.ActivityID == sub.ActivityID && e.TeamName == sub.TeamName {
			continue
		}
		kept = append(kept, e)
	}
	next.ScoreEntries = append(kept, entry)
	return next, &entry, nil
}

// AwardSubmission is a director's direct point award for a team on an
// activity.
type AwardSubmission struct {
	ActivityID string
	TeamName   string
	Points     int
	AwardedBy  string
}

// SubmitDirectorAward validates and records a director award. The award
// may not exceed the activity's point ceiling; a resubmission for the
// same (activity, team) replaces the previous award.
func SubmitDirectorAward(s *domain.Snapshot, sub AwardSubmission, now time.Time) (*domain.Snapshot, *domain.DirectorAward, error) {
	if sub.TeamName == "" {
		return nil, nil, domain.ErrEmptyTeam
	}
	if _, ok := s.TeamByName(sub.TeamName); !ok {
		return nil, nil, domain.ErrUnknownTeam
	}
	activity, ok := s.ActivityByID(sub.ActivityID)
	if !ok {
		return nil, nil, domain.ErrUnknownActivity
	}
	if sub.Points <= 0 {
		return nil, nil, domain.ErrNonPositive
	}
	if sub.Points > activity.MaxTotal() {
		return nil, nil, domain.ErrPointsExceedMax
	}

	award := domain.DirectorAward{
		ID:         uuid.NewString(),
		ActivityID: sub.ActivityID,
		TeamName:   sub.TeamName,
		Points:     sub.Points,
		AwardedBy:  sub.AwardedBy,
		Timestamp:  now,
	}

	next := s.Clone()
	kept := next.DirectorAwards[:0]
	for _, a := range next.DirectorAwards {
		if a.ActivityID == sub.ActivityID && a.TeamName == sub.TeamName {
			continue
		}
		kept = append(kept, a)
	}
	next.DirectorAwards = append(kept, award)
	return next, &award, nil
}

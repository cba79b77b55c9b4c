package domain

import "time"

// ScoreEntry is one judge's rubric score for a team on a judged
// activity. Points are keyed by criterion id, never by criterion name.
// At most one live entry exists per (judge, activity, team) triple; a
// resubmission replaces the previous entry.
type ScoreEntry struct {
	ID          string         `json:"id"`
	ActivityID  string         `json:"activity_id"`
	JudgeName   string         `json:"judge_name"`
	TeamName    string         `json:"team_name"`
	Points      map[string]int `json:"points"`
	TotalPoints int            `json:"total_points"`
	Timestamp   time.Time      `json:"timestamp"`
}

// SumPoints recomputes the derived total from the per-criterion values.
func (e *ScoreEntry) SumPoints() int {
	total := 0
	for _, v := range e.Points {
		total += v
	}
	return total
}

// DirectorAward is a single authoritative point value for a team on an
// activity. Awards are summed into the activity contribution, never
// averaged. At most one live award exists per (activity, team).
type DirectorAward struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	TeamName   string    `json:"team_name"`
	Points     int       `json:"points"`
	AwardedBy  string    `json:"awarded_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// AggregatedResult is one team's derived leaderboard row. It is
// recomputed on demand and never persisted as a source of truth.
type AggregatedResult struct {
	TeamName       string             `json:"team_name"`
	TotalPoints    float64            `json:"total_points"`
	ActivityScores map[string]float64 `json:"activity_scores"`
	BonusTotal     int                `json:"bonus_total"`
	PenaltyTotal   int                `json:"penalty_total"`
	VotingTotal    int                `json:"voting_total"`
}

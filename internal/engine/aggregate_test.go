package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festboard/internal/domain"
)

func testSnapshot() *domain.Snapshot {
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
		VotingSettings: domain.VotingSettings{Mode: domain.VotingPublic, Name: "Crowd Favorite", WinnerPoints: 100},
	}
}

func entry(activityID, judge, team string, total int) domain.ScoreEntry {
	return domain.ScoreEntry{
		ID:          judge + "/" + activityID + "/" + team,
		ActivityID:  activityID,
		JudgeName:   judge,
		TeamName:    team,
		TotalPoints: total,
		Timestamp:   time.Now(),
	}
}

func TestAggregate_UnscoredTeamsAppearOnce(t *testing.T) {
	snap := testSnapshot()

	results := Aggregate(snap)

	require.Len(t, results, 3)
	seen := make(map[string]int)
	for _, r := range results {
		seen[r.TeamName]++
		assert.Equal(t, 0.0, r.TotalPoints)
	}
	for _, team := range snap.Teams {
		assert.Equal(t, 1, seen[team.Name])
	}
}

func TestAggregate_JudgedMeanPlusDirectorSum(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{
		entry("main-performance", "Abdullah", "Japan", 92),
		entry("main-performance", "Bisma", "Japan", 98),
	}

	results := Aggregate(snap)

	require.Equal(t, "Japan", results[0].TeamName)
	assert.Equal(t, 95.0, results[0].ActivityScores["main-performance"])
	assert.Equal(t, 95.0, results[0].TotalPoints)

	// A director award on the same activity is summed on top of the mean.
	snap.DirectorAwards = []domain.DirectorAward{
		{ID: "a1", ActivityID: "main-performance", TeamName: "Japan", Points: 10},
	}
	results = Aggregate(snap)
	assert.Equal(t, 105.0, results[0].ActivityScores["main-performance"])
}

func TestAggregate_MeanRoundsToTwoDecimals(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{
		entry("main-performance", "Abdullah", "Japan", 92),
		entry("main-performance", "Bisma", "Japan", 98),
		entry("main-performance", "Faisal", "Japan", 95),
	}

	results := Aggregate(snap)

	// (92+98+95)/3 = 95.0 exactly; make it uneven with a fourth judge.
	snap.ScoreEntries = append(snap.ScoreEntries, entry("main-performance", "Wajid", "Japan", 94))
	results = Aggregate(snap)
	assert.Equal(t, 94.75, results[0].ActivityScores["main-performance"])

	snap.ScoreEntries = snap.ScoreEntries[:3]
	snap.ScoreEntries = append(snap.ScoreEntries, entry("main-performance", "Wajid", "Japan", 92))
	results = Aggregate(snap)
	// (92+98+95+92)/4 = 94.25
	assert.Equal(t, 94.25, results[0].ActivityScores["main-performance"])
}

func TestAggregate_OnlyApprovedAdjustmentsCount(t *testing.T) {
	snap := testSnapshot()
	snap.Bonuses = []domain.Adjustment{
		{ID: "b1", Kind: domain.KindBonus, TeamName: "Spain", Points: 5, Status: domain.StatusApproved},
		{ID: "b2", Kind: domain.KindBonus, TeamName: "Spain", Points: 7, Status: domain.StatusPending},
		{ID: "b3", Kind: domain.KindBonus, TeamName: "Spain", Points: 9, Status: domain.StatusRejected},
	}
	snap.Penalties = []domain.Adjustment{
		{ID: "p1", Kind: domain.KindPenalty, TeamName: "Spain", Points: 2, Status: domain.StatusApproved},
		{ID: "p2", Kind: domain.KindPenalty, TeamName: "Spain", Points: 10, Status: domain.StatusPending},
	}

	results := Aggregate(snap)

	require.Equal(t, "Spain", results[0].TeamName)
	assert.Equal(t, 5, results[0].BonusTotal)
	assert.Equal(t, 2, results[0].PenaltyTotal)
	assert.Equal(t, 3.0, results[0].TotalPoints)
}

func TestAggregate_ApprovingBonusRaisesTotalByExactlyN(t *testing.T) {
	snap := testSnapshot()
	snap.Bonuses = []domain.Adjustment{
		{ID: "b1", Kind: domain.KindBonus, TeamName: "Malaysia", Points: 13, Status: domain.StatusPending},
	}

	before := Aggregate(snap)
	var baseline float64
	for _, r := range before {
		if r.TeamName == "Malaysia" {
			baseline = r.TotalPoints
		}
	}

	approved, err := SetAdjustmentStatus(snap, domain.KindBonus, "b1", domain.StatusApproved)
	require.NoError(t, err)
	after := Aggregate(approved)
	for _, r := range after {
		if r.TeamName == "Malaysia" {
			assert.Equal(t, baseline+13, r.TotalPoints)
		}
	}

	rejected, err := SetAdjustmentStatus(snap, domain.KindBonus, "b1", domain.StatusRejected)
	require.NoError(t, err)
	afterReject := Aggregate(rejected)
	for _, r := range afterReject {
		if r.TeamName == "Malaysia" {
			assert.Equal(t, baseline, r.TotalPoints)
		}
	}
}

func TestAggregate_DanglingTeamReferenceIgnored(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{
		entry("main-performance", "Abdullah", "Atlantis", 99),
	}
	snap.DirectorAwards = []domain.DirectorAward{
		{ID: "a1", ActivityID: "booth-award", TeamName: "Atlantis", Points: 40},
	}
	snap.Bonuses = []domain.Adjustment{
		{ID: "b1", Kind: domain.KindBonus, TeamName: "Atlantis", Points: 5, Status: domain.StatusApproved},
	}

	results := Aggregate(snap)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotEqual(t, "Atlantis", r.TeamName)
		assert.Equal(t, 0.0, r.TotalPoints)
	}
}

func TestAggregate_OrderingIsDeterministic(t *testing.T) {
	snap := testSnapshot()
	snap.DirectorAwards = []domain.DirectorAward{
		{ID: "a1", ActivityID: "booth-award", TeamName: "Spain", Points: 30},
		{ID: "a2", ActivityID: "booth-award", TeamName: "Malaysia", Points: 30},
		{ID: "a3", ActivityID: "booth-award", TeamName: "Japan", Points: 40},
	}

	results := Aggregate(snap)

	require.Len(t, results, 3)
	assert.Equal(t, "Japan", results[0].TeamName)
	// Tied totals fall back to name order.
	assert.Equal(t, "Malaysia", results[1].TeamName)
	assert.Equal(t, "Spain", results[2].TeamName)
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{
		entry("main-performance", "Abdullah", "Japan", 92),
		entry("main-performance", "Bisma", "Japan", 98),
	}
	snap.Bonuses = []domain.Adjustment{
		{ID: "b1", Kind: domain.KindBonus, TeamName: "Japan", Points: 5, Status: domain.StatusApproved},
	}
	snap.Penalties = []domain.Adjustment{
		{ID: "p1", Kind: domain.KindPenalty, TeamName: "Japan", Points: 10, Status: domain.StatusPending},
	}
	snap.VotingAwards = []domain.VotingAward{
		{ID: "v1", SessionName: "Crowd Favorite", TeamName: "Japan", Points: 100},
	}

	results := Aggregate(snap)

	require.Equal(t, "Japan", results[0].TeamName)
	assert.Equal(t, 200.0, results[0].TotalPoints)
	assert.Equal(t, 5, results[0].BonusTotal)
	assert.Equal(t, 0, results[0].PenaltyTotal)
	assert.Equal(t, 100, results[0].VotingTotal)
}

func TestAggregate_SnapshotRoundTrip(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{
		entry("main-performance", "Abdullah", "Japan", 92),
		entry("main-performance", "Bisma", "Japan", 98),
		entry("main-performance", "Abdullah", "Spain", 84),
	}
	snap.DirectorAwards = []domain.DirectorAward{
		{ID: "a1", ActivityID: "booth-award", TeamName: "Malaysia", Points: 35},
	}
	snap.Bonuses = []domain.Adjustment{
		{ID: "b1", Kind: domain.KindBonus, TeamName: "Spain", Points: 5, Status: domain.StatusApproved},
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var restored domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, Aggregate(snap), Aggregate(&restored))
}

func TestSubmitScoreEntry_ReplacesPreviousTriple(t *testing.T) {
	snap := testSnapshot()

	first, _, err := SubmitScoreEntry(snap, ScoreSubmission{
		ActivityID: "main-performance",
		JudgeName:  "Abdullah",
		TeamName:   "Japan",
		Points:     map[string]int{"c1": 40, "c2": 50},
	}, time.Now())
	require.NoError(t, err)

	second, _, err := SubmitScoreEntry(first, ScoreSubmission{
		ActivityID: "main-performance",
		JudgeName:  "Abdullah",
		TeamName:   "Japan",
		Points:     map[string]int{"c1": 45, "c2": 50},
	}, time.Now())
	require.NoError(t, err)

	require.Len(t, second.ScoreEntries, 1)
	assert.Equal(t, 95, second.ScoreEntries[0].TotalPoints)

	// Aggregation never double-counts the replaced entry.
	results := Aggregate(second)
	assert.Equal(t, 95.0, results[0].ActivityScores["main-performance"])
}

func TestSubmitScoreEntry_Validation(t *testing.T) {
	snap := testSnapshot()
	now := time.Now()

	tests := []struct {
		name    string
		sub     ScoreSubmission
		wantErr error
	}{
		{
			name:    "empty team",
			sub:     ScoreSubmission{ActivityID: "main-performance", JudgeName: "Abdullah"},
			wantErr: domain.ErrEmptyTeam,
		},
		{
			name:    "unknown team",
			sub:     ScoreSubmission{ActivityID: "main-performance", JudgeName: "Abdullah", TeamName: "Atlantis"},
			wantErr: domain.ErrUnknownTeam,
		},
		{
			name:    "unknown activity",
			sub:     ScoreSubmission{ActivityID: "nope", JudgeName: "Abdullah", TeamName: "Japan"},
			wantErr: domain.ErrUnknownActivity,
		},
		{
			name:    "direct activity cannot take judge scores",
			sub:     ScoreSubmission{ActivityID: "booth-award", JudgeName: "Abdullah", TeamName: "Japan"},
			wantErr: domain.ErrUnknownActivity,
		},
		{
			name: "unknown criterion",
			sub: ScoreSubmission{
				ActivityID: "main-performance", JudgeName: "Abdullah", TeamName: "Japan",
				Points: map[string]int{"c99": 1},
			},
			wantErr: domain.ErrUnknownCriterion,
		},
		{
			name: "criterion over ceiling",
			sub: ScoreSubmission{
				ActivityID: "main-performance", JudgeName: "Abdullah", TeamName: "Japan",
				Points: map[string]int{"c1": 51},
			},
			wantErr: domain.ErrPointsExceedMax,
		},
		{
			name: "negative criterion value",
			sub: ScoreSubmission{
				ActivityID: "main-performance", JudgeName: "Abdullah", TeamName: "Japan",
				Points: map[string]int{"c1": -1},
			},
			wantErr: domain.ErrPointsExceedMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, entry, err := SubmitScoreEntry(snap, tt.sub, now)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, next)
			assert.Nil(t, entry)
		})
	}
}

func TestSubmitDirectorAward_ReplacesAndCaps(t *testing.T) {
	snap := testSnapshot()
	now := time.Now()

	_, _, err := SubmitDirectorAward(snap, AwardSubmission{
		ActivityID: "booth-award", TeamName: "Japan", Points: 51, AwardedBy: "director",
	}, now)
	assert.ErrorIs(t, err, domain.ErrPointsExceedMax)

	first, _, err := SubmitDirectorAward(snap, AwardSubmission{
		ActivityID: "booth-award", TeamName: "Japan", Points: 30, AwardedBy: "director",
	}, now)
	require.NoError(t, err)

	second, award, err := SubmitDirectorAward(first, AwardSubmission{
		ActivityID: "booth-award", TeamName: "Japan", Points: 45, AwardedBy: "director",
	}, now)
	require.NoError(t, err)
	require.Len(t, second.DirectorAwards, 1)
	assert.Equal(t, 45, award.Points)

	// Judged activities cap at the sum of criteria maxima.
	_, _, err = SubmitDirectorAward(snap, AwardSubmission{
		ActivityID: "main-performance", TeamName: "Japan", Points: 101, AwardedBy: "director",
	}, now)
	assert.ErrorIs(t, err, domain.ErrPointsExceedMax)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	snap := testSnapshot()
	snap.ScoreEntries = []domain.ScoreEntry{entry("main-performance", "Abdullah", "Japan", 92)}

	before, err := json.Marshal(snap)
	require.NoError(t, err)
	_ = Aggregate(snap)
	after, err := json.Marshal(snap)
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
}

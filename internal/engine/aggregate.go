// Package engine implements the score aggregation and voting session
// core as pure functions over a snapshot: every operation takes the
// current snapshot and returns a new snapshot plus an outcome, leaving
// persistence policy to the caller.
package engine

import (
	"math"
	"sort"

	"festboard/internal/domain"
)

// Aggregate folds every scoring source into one ranked leaderboard.
// Each team appears exactly once, teams with no scoring activity
// included at 0.00. Records referencing a team outside the current team
// set are ignored. The ordering is total points descending with ties
// broken by team name ascending, so a given snapshot always produces
// the same ranking.
func Aggregate(s *domain.Snapshot) []domain.AggregatedResult {
	results := make([]domain.AggregatedResult, 0, len(s.Teams))

	for _, team := range s.Teams {
		activityScores := make(map[string]float64, len(s.Activities))
		grandTotal := 0.0

		for _, activity := range s.Activities {
			judgedMean := 0.0
			if activity.Type == domain.ActivityJudged {
				sum, count := 0, 0
				for _, entry := range s.ScoreEntries {
					if entry.TeamName == team.Name && entry.ActivityID == activity.ID {
						sum += entry.TotalPoints
						count++
					}
				}
				if count > 0 {
					judgedMean = float64(sum) / float64(count)
				}
			}

			directorSum := 0
			for _, award := range s.DirectorAwards {
				if award.TeamName == team.Name && award.ActivityID == activity.ID {
					directorSum += award.Points
				}
			}

			contribution := round2(judgedMean + float64(directorSum))
			activityScores[activity.ID] = contribution
			grandTotal += contribution
		}

		bonusTotal := approvedSum(s.Bonuses, team.Name)
		penaltyTotal := approvedSum(s.Penalties, team.Name)

		votingTotal := 0
		for _, award := range s.VotingAwards {
			if award.TeamName == team.Name {
				votingTotal += award.Points
			}
		}

		grandTotal += float64(bonusTotal) + float64(votingTotal) - float64(penaltyTotal)

		results = append(results, domain.AggregatedResult{
			TeamName:       team.Name,
			TotalPoints:    round2(grandTotal),
			ActivityScores: activityScores,
			BonusTotal:     bonusTotal,
			PenaltyTotal:   penaltyTotal,
			VotingTotal:    votingTotal,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalPoints != results[j].TotalPoints {
			return results[i].TotalPoints > results[j].TotalPoints
		}
		return results[i].TeamName < results[j].TeamName
	})

	return results
}

func approvedSum(adjustments []domain.Adjustment, teamName string) int {
	total := 0
	for _, a := range adjustments {
		if a.TeamName == teamName && a.Status == domain.StatusApproved {
			total += a.Points
		}
	}
	return total
}

// round2 rounds to two decimal places using standard rounding.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package engine

import (
	"sort"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// recentWindow is how many of the latest meetings feed the trend block.
const recentWindow = 5

// DedupeH2HMatches collapses historical meetings reported by several
// providers onto one record per real-world match, keyed by calendar date plus
// the normalized team names. The more complete record wins; the result is
// ordered most recent first.
func DedupeH2HMatches(matches []models.MatchRecord) []models.MatchRecord {
	unique := make(map[string]models.MatchRecord)

	for _, m := range matches {
		if m.Kickoff.IsZero() || m.HomeTeam == "" || m.AwayTeam == "" {
			continue
		}
		key := models.MatchKey(m.Kickoff, m.HomeTeam, m.AwayTeam)
		current, exists := unique[key]
		if !exists || matchCompleteness(m) > matchCompleteness(current) {
			unique[key] = m
		}
	}

	out := make([]models.MatchRecord, 0, len(unique))
	for _, m := range unique {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			return out[i].Kickoff.After(out[j].Kickoff)
		}
		return models.TeamKey(out[i].HomeTeam) < models.TeamKey(out[j].HomeTeam)
	})
	return out
}

func matchCompleteness(m models.MatchRecord) int {
	score := 0
	if len(m.Statistics) > 0 {
		score++
	}
	if m.Venue != "" {
		score++
	}
	if m.Competition != "" {
		score++
	}
	if m.HasXG {
		score++
	}
	return score
}

// ComputeHeadToHead aggregates deduplicated meetings into the head-to-head
// summary for (team1, team2). Matches naming neither team are skipped; a
// match where only one side resolves counts the unresolved side as the
// opponent.
func ComputeHeadToHead(team1Name, team2Name string, matches []models.MatchRecord) models.HeadToHead {
	key1 := models.TeamKey(team1Name)
	key2 := models.TeamKey(team2Name)

	h2h := models.HeadToHead{
		Team1ID:   key1,
		Team2ID:   key2,
		Team1Name: team1Name,
		Team2Name: team2Name,
	}

	stats := &h2h.Stats
	totalGoals := 0

	for _, m := range matches {
		homeIsTeam1 := models.TeamKey(m.HomeTeam) == key1
		awayIsTeam1 := models.TeamKey(m.AwayTeam) == key1
		homeIsTeam2 := models.TeamKey(m.HomeTeam) == key2
		awayIsTeam2 := models.TeamKey(m.AwayTeam) == key2
		if !homeIsTeam1 && !awayIsTeam1 && !homeIsTeam2 && !awayIsTeam2 {
			continue
		}

		team1Home := homeIsTeam1 || (!awayIsTeam1 && awayIsTeam2)

		var goals1, goals2 int
		if team1Home {
			goals1, goals2 = m.HomeScore, m.AwayScore
		} else {
			goals1, goals2 = m.AwayScore, m.HomeScore
		}

		stats.TotalMatches++
		stats.Team1Goals += goals1
		stats.Team2Goals += goals2
		totalGoals += goals1 + goals2

		switch {
		case goals1 > goals2:
			stats.Team1Wins++
			if team1Home {
				stats.HomeWinsTeam1++
			} else {
				stats.AwayWinsTeam1++
			}
		case goals2 > goals1:
			stats.Team2Wins++
			if team1Home {
				stats.AwayWinsTeam2++
			} else {
				stats.HomeWinsTeam2++
			}
		default:
			stats.Draws++
		}

		if goals1 > 0 && goals2 > 0 {
			stats.BothTeamsScored++
		}
		if goals2 == 0 {
			stats.CleanSheetsTeam1++
		}
		if goals1 == 0 {
			stats.CleanSheetsTeam2++
		}

		switch m.FirstGoal {
		case "home":
			if team1Home {
				stats.FirstGoalTeam1++
			} else {
				stats.FirstGoalTeam2++
			}
		case "away":
			if team1Home {
				stats.FirstGoalTeam2++
			} else {
				stats.FirstGoalTeam1++
			}
		}
	}

	if stats.TotalMatches > 0 {
		total := float64(stats.TotalMatches)
		stats.Team1WinPercentage = models.Round2(float64(stats.Team1Wins) / total * 100)
		stats.Team2WinPercentage = models.Round2(float64(stats.Team2Wins) / total * 100)
		stats.AvgGoalsPerMatch = models.Round2(float64(totalGoals) / total)
	}

	h2h.Trends = computeTrends(key1, matches)
	return h2h
}

// computeTrends derives recent form and goal trends over the latest meetings.
// Matches are expected most-recent-first, as DedupeH2HMatches returns them.
func computeTrends(key1 string, matches []models.MatchRecord) models.H2HTrends {
	trends := models.H2HTrends{}

	for _, m := range matches {
		if len(trends.RecentFormTeam1) >= recentWindow {
			break
		}

		team1Home := models.TeamKey(m.HomeTeam) == key1
		if !team1Home && models.TeamKey(m.AwayTeam) != key1 {
			continue
		}

		var goals1, goals2 int
		if team1Home {
			goals1, goals2 = m.HomeScore, m.AwayScore
		} else {
			goals1, goals2 = m.AwayScore, m.HomeScore
		}

		trends.RecentFormTeam1 = append(trends.RecentFormTeam1, formLetter(goals1, goals2))
		trends.RecentFormTeam2 = append(trends.RecentFormTeam2, formLetter(goals2, goals1))
		trends.GoalsTrendTeam1 = append(trends.GoalsTrendTeam1, goals1)
		trends.GoalsTrendTeam2 = append(trends.GoalsTrendTeam2, goals2)
	}

	return trends
}

func formLetter(scored, conceded int) string {
	switch {
	case scored > conceded:
		return "W"
	case scored < conceded:
		return "L"
	default:
		return "D"
	}
}

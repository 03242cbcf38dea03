package engine

import (
	"sort"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// XGSplit is a for/against expected-goals average over a set of matches.
type XGSplit struct {
	For        float64 `json:"xg_for"`
	Against    float64 `json:"xg_against"`
	Difference float64 `json:"xg_difference"`
}

// TeamXGStats summarizes a team's recent expected-goals record, split by
// venue. It feeds the pre-match expectancy prediction.
type TeamXGStats struct {
	TeamID          string  `json:"team_id"`
	MatchesAnalyzed int     `json:"matches_analyzed"`
	HomeMatches     int     `json:"home_matches"`
	AwayMatches     int     `json:"away_matches"`
	Overall         XGSplit `json:"overall"`
	Home            XGSplit `json:"home"`
	Away            XGSplit `json:"away"`
}

// TeamXGHistory aggregates a team's latest matches carrying xG data into
// overall/home/away for-against averages. Matches without xG are ignored;
// at most limit matches (most recent first) are analyzed.
func TeamXGHistory(teamID string, matches []models.MatchRecord, limit int) TeamXGStats {
	key := models.TeamKey(teamID)

	withXG := make([]models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		if !m.HasXG || m.Kickoff.IsZero() {
			continue
		}
		if models.TeamKey(m.HomeTeam) != key && models.TeamKey(m.AwayTeam) != key {
			continue
		}
		withXG = append(withXG, m)
	}
	sort.Slice(withXG, func(i, j int) bool {
		return withXG[i].Kickoff.After(withXG[j].Kickoff)
	})
	if limit > 0 && len(withXG) > limit {
		withXG = withXG[:limit]
	}

	stats := TeamXGStats{TeamID: teamID}
	var totalFor, totalAgainst, homeFor, homeAgainst, awayFor, awayAgainst float64

	for _, m := range withXG {
		isHome := models.TeamKey(m.HomeTeam) == key

		var own, opponent float64
		if isHome {
			own, opponent = m.XGHome, m.XGAway
		} else {
			own, opponent = m.XGAway, m.XGHome
		}

		stats.MatchesAnalyzed++
		totalFor += own
		totalAgainst += opponent
		if isHome {
			stats.HomeMatches++
			homeFor += own
			homeAgainst += opponent
		} else {
			stats.AwayMatches++
			awayFor += own
			awayAgainst += opponent
		}
	}

	stats.Overall = makeSplit(totalFor, totalAgainst, stats.MatchesAnalyzed)
	stats.Home = makeSplit(homeFor, homeAgainst, stats.HomeMatches)
	stats.Away = makeSplit(awayFor, awayAgainst, stats.AwayMatches)
	return stats
}

func makeSplit(xgFor, xgAgainst float64, n int) XGSplit {
	if n == 0 {
		return XGSplit{}
	}
	f := models.Round2(xgFor / float64(n))
	a := models.Round2(xgAgainst / float64(n))
	return XGSplit{For: f, Against: a, Difference: models.Round2(f - a)}
}

// PredictMatchXG derives a pre-match expectancy pair from both teams'
// histories: each side's attack average crossed with the opponent's defensive
// average. On neutral ground, venue splits are averaged out instead.
func PredictMatchXG(home, away TeamXGStats, neutral bool) (lambdaHome, lambdaAway float64) {
	if neutral {
		lambdaHome = (home.Home.For + home.Away.For) / 2
		lambdaAway = (away.Home.For + away.Away.For) / 2
	} else {
		lambdaHome = (home.Home.For + away.Away.Against) / 2
		lambdaAway = (away.Away.For + home.Home.Against) / 2
	}
	return models.Round2(lambdaHome), models.Round2(lambdaAway)
}

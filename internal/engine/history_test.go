package engine

import (
	"testing"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

func TestTeamXGHistory(t *testing.T) {
	matches := []models.MatchRecord{
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kickoff: day("2026-03-07"), HasXG: true, XGHome: 1.8, XGAway: 0.9},
		{HomeTeam: "Liverpool", AwayTeam: "Arsenal", Kickoff: day("2026-02-21"), HasXG: true, XGHome: 1.4, XGAway: 1.2},
		{HomeTeam: "Arsenal", AwayTeam: "Tottenham", Kickoff: day("2026-02-14")}, // no xG, ignored
		{HomeTeam: "Everton", AwayTeam: "Newcastle", Kickoff: day("2026-02-07"), HasXG: true, XGHome: 1.0, XGAway: 1.0}, // not Arsenal
	}

	stats := TeamXGHistory("Arsenal", matches, 10)

	if stats.MatchesAnalyzed != 2 {
		t.Fatalf("matches analyzed = %d, want 2", stats.MatchesAnalyzed)
	}
	if stats.HomeMatches != 1 || stats.AwayMatches != 1 {
		t.Errorf("home/away split = %d/%d, want 1/1", stats.HomeMatches, stats.AwayMatches)
	}
	if !almostEqual(stats.Overall.For, 1.5, eps) || !almostEqual(stats.Overall.Against, 1.15, eps) {
		t.Errorf("overall = %v/%v, want 1.5/1.15", stats.Overall.For, stats.Overall.Against)
	}
	if !almostEqual(stats.Home.For, 1.8, eps) || !almostEqual(stats.Home.Against, 0.9, eps) {
		t.Errorf("home = %v/%v, want 1.8/0.9", stats.Home.For, stats.Home.Against)
	}
	if !almostEqual(stats.Away.For, 1.2, eps) || !almostEqual(stats.Away.Against, 1.4, eps) {
		t.Errorf("away = %v/%v, want 1.2/1.4", stats.Away.For, stats.Away.Against)
	}
	if !almostEqual(stats.Home.Difference, 0.9, eps) {
		t.Errorf("home difference = %v, want 0.9", stats.Home.Difference)
	}
}

func TestTeamXGHistory_LimitKeepsMostRecent(t *testing.T) {
	matches := []models.MatchRecord{
		{HomeTeam: "Arsenal", AwayTeam: "Everton", Kickoff: day("2026-01-01"), HasXG: true, XGHome: 9.0, XGAway: 0},
		{HomeTeam: "Arsenal", AwayTeam: "Chelsea", Kickoff: day("2026-03-07"), HasXG: true, XGHome: 1.0, XGAway: 1.0},
		{HomeTeam: "Arsenal", AwayTeam: "Tottenham", Kickoff: day("2026-02-14"), HasXG: true, XGHome: 2.0, XGAway: 1.0},
	}

	stats := TeamXGHistory("Arsenal", matches, 2)
	if stats.MatchesAnalyzed != 2 {
		t.Fatalf("matches analyzed = %d, want 2", stats.MatchesAnalyzed)
	}
	// The oldest match carries an outlier; the limit must drop it.
	if !almostEqual(stats.Overall.For, 1.5, eps) {
		t.Errorf("overall for = %v, want 1.5 over the two most recent matches", stats.Overall.For)
	}
}

func TestTeamXGHistory_NoData(t *testing.T) {
	stats := TeamXGHistory("Arsenal", nil, 10)
	if stats.MatchesAnalyzed != 0 {
		t.Errorf("matches analyzed = %d, want 0", stats.MatchesAnalyzed)
	}
	if stats.Overall != (XGSplit{}) {
		t.Errorf("overall = %v, want zero split", stats.Overall)
	}
}

func TestPredictMatchXG(t *testing.T) {
	home := TeamXGStats{
		Home: XGSplit{For: 1.8, Against: 0.9},
		Away: XGSplit{For: 1.2, Against: 1.4},
	}
	away := TeamXGStats{
		Home: XGSplit{For: 1.5, Against: 1.1},
		Away: XGSplit{For: 1.0, Against: 1.6},
	}

	lambdaHome, lambdaAway := PredictMatchXG(home, away, false)
	if !almostEqual(lambdaHome, 1.7, eps) {
		t.Errorf("home expectancy = %v, want (1.8+1.6)/2 = 1.7", lambdaHome)
	}
	if !almostEqual(lambdaAway, 0.95, eps) {
		t.Errorf("away expectancy = %v, want (1.0+0.9)/2 = 0.95", lambdaAway)
	}
}

func TestPredictMatchXG_NeutralGround(t *testing.T) {
	home := TeamXGStats{Home: XGSplit{For: 2.0}, Away: XGSplit{For: 1.0}}
	away := TeamXGStats{Home: XGSplit{For: 1.6}, Away: XGSplit{For: 0.8}}

	lambdaHome, lambdaAway := PredictMatchXG(home, away, true)
	if !almostEqual(lambdaHome, 1.5, eps) {
		t.Errorf("neutral home expectancy = %v, want 1.5", lambdaHome)
	}
	if !almostEqual(lambdaAway, 1.2, eps) {
		t.Errorf("neutral away expectancy = %v, want 1.2", lambdaAway)
	}
}

package models

import (
	"time"
)

// MatchRecord is one historical meeting between two teams, as reported by a
// provider and normalized by the engine.
type MatchRecord struct {
	Source      string             `json:"source,omitempty"`
	HomeTeam    string             `json:"home_team"`
	AwayTeam    string             `json:"away_team"`
	HomeScore   int                `json:"home_score"`
	AwayScore   int                `json:"away_score"`
	Kickoff     time.Time          `json:"kickoff"`
	Competition string             `json:"competition,omitempty"`
	Venue       string             `json:"venue,omitempty"`
	Statistics  map[string]float64 `json:"statistics,omitempty"`
	XGHome      float64            `json:"xg_home,omitempty"`
	XGAway      float64            `json:"xg_away,omitempty"`
	HasXG       bool               `json:"has_xg,omitempty"`
	FirstGoal   string             `json:"first_goal,omitempty"` // "home", "away" or ""
}

// HeadToHead aggregates the meeting history of two teams. Team1 is always the
// team the caller asked about first; Reverse flips the perspective.
type HeadToHead struct {
	Team1ID     string        `json:"team1_id"`
	Team2ID     string        `json:"team2_id"`
	Team1Name   string        `json:"team1_name"`
	Team2Name   string        `json:"team2_name"`
	Stats       H2HStats      `json:"stats"`
	Trends      H2HTrends     `json:"trends"`
	Matches     []MatchRecord `json:"matches,omitempty"`
	Sources     []string      `json:"sources,omitempty"`
	LastUpdated time.Time     `json:"last_updated"`
}

// H2HStats are the aggregate counters over every deduplicated meeting.
type H2HStats struct {
	TotalMatches       int     `json:"total_matches"`
	Team1Wins          int     `json:"team1_wins"`
	Team2Wins          int     `json:"team2_wins"`
	Draws              int     `json:"draws"`
	Team1WinPercentage float64 `json:"team1_win_percentage"`
	Team2WinPercentage float64 `json:"team2_win_percentage"`
	Team1Goals         int     `json:"team1_goals"`
	Team2Goals         int     `json:"team2_goals"`
	AvgGoalsPerMatch   float64 `json:"avg_goals_per_match"`
	BothTeamsScored    int     `json:"both_teams_scored"`
	CleanSheetsTeam1   int     `json:"clean_sheets_team1"`
	CleanSheetsTeam2   int     `json:"clean_sheets_team2"`
	FirstGoalTeam1     int     `json:"first_goal_team1"`
	FirstGoalTeam2     int     `json:"first_goal_team2"`
	HomeWinsTeam1      int     `json:"home_wins_team1"`
	HomeWinsTeam2      int     `json:"home_wins_team2"`
	AwayWinsTeam1      int     `json:"away_wins_team1"`
	AwayWinsTeam2      int     `json:"away_wins_team2"`
}

// H2HTrends capture recent tendencies over the last few meetings.
type H2HTrends struct {
	RecentFormTeam1 []string `json:"recent_form_team1,omitempty"`
	RecentFormTeam2 []string `json:"recent_form_team2,omitempty"`
	GoalsTrendTeam1 []int    `json:"goals_trend_team1,omitempty"`
	GoalsTrendTeam2 []int    `json:"goals_trend_team2,omitempty"`
}

// Reverse returns the same history seen from the other team's perspective:
// every team1/team2 counter is swapped. Reverse is its own inverse.
func (h HeadToHead) Reverse() HeadToHead {
	out := h

	out.Team1ID, out.Team2ID = h.Team2ID, h.Team1ID
	out.Team1Name, out.Team2Name = h.Team2Name, h.Team1Name

	s := h.Stats
	out.Stats = s
	out.Stats.Team1Wins, out.Stats.Team2Wins = s.Team2Wins, s.Team1Wins
	out.Stats.Team1WinPercentage, out.Stats.Team2WinPercentage = s.Team2WinPercentage, s.Team1WinPercentage
	out.Stats.Team1Goals, out.Stats.Team2Goals = s.Team2Goals, s.Team1Goals
	out.Stats.CleanSheetsTeam1, out.Stats.CleanSheetsTeam2 = s.CleanSheetsTeam2, s.CleanSheetsTeam1
	out.Stats.FirstGoalTeam1, out.Stats.FirstGoalTeam2 = s.FirstGoalTeam2, s.FirstGoalTeam1
	out.Stats.HomeWinsTeam1, out.Stats.HomeWinsTeam2 = s.HomeWinsTeam2, s.HomeWinsTeam1
	out.Stats.AwayWinsTeam1, out.Stats.AwayWinsTeam2 = s.AwayWinsTeam2, s.AwayWinsTeam1

	out.Trends = H2HTrends{
		RecentFormTeam1: h.Trends.RecentFormTeam2,
		RecentFormTeam2: h.Trends.RecentFormTeam1,
		GoalsTrendTeam1: h.Trends.GoalsTrendTeam2,
		GoalsTrendTeam2: h.Trends.GoalsTrendTeam1,
	}

	return out
}

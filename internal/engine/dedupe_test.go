package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

func matchRecord(source, home, away, date string, fields map[string]any) models.RawRecord {
	all := map[string]any{
		fieldKickoff:  date,
		fieldHomeTeam: home,
		fieldAwayTeam: away,
	}
	for k, v := range fields {
		all[k] = v
	}
	return models.RawRecord{Source: source, Fields: all, FetchedAt: time.Now()}
}

func TestDedupeMatchRecords_CompletenessWins(t *testing.T) {
	sparse := matchRecord("worldfootball", "Arsenal", "Chelsea", "2026-03-07", nil)
	rich := matchRecord("football-data", "FC Arsenal", "Chelsea", "2026-03-07", map[string]any{
		"statistics": map[string]any{"possession_home": 58.0},
		"lineups":    []any{"squad"},
	})

	got := DedupeMatchRecords([]models.RawRecord{sparse, rich})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Source != "football-data" {
		t.Errorf("kept source %q, want the more complete football-data record", got[0].Source)
	}
}

func TestDedupeMatchRecords_TieKeepsFirstSeen(t *testing.T) {
	first := matchRecord("fbref", "Arsenal", "Chelsea", "2026-03-07", nil)
	second := matchRecord("sofascore", "FC Arsenal", "FC Chelsea", "2026-03-07", nil)

	got := DedupeMatchRecords([]models.RawRecord{first, second})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].Source != "fbref" {
		t.Errorf("tie kept %q, want the earliest-seen fbref record", got[0].Source)
	}
}

func TestDedupeMatchRecords_DropsUnkeyedRecords(t *testing.T) {
	records := []models.RawRecord{
		{Source: "a", Fields: map[string]any{fieldHomeTeam: "Arsenal", fieldAwayTeam: "Chelsea"}}, // no date
		matchRecord("b", "", "Chelsea", "2026-03-07", nil),                                        // no home team
		matchRecord("c", "Arsenal", "", "2026-03-07", nil),                                        // no away team
		matchRecord("d", "Arsenal", "Chelsea", "2026-03-07", nil),
	}

	got := DedupeMatchRecords(records)
	if len(got) != 1 || got[0].Source != "d" {
		t.Fatalf("got %v, want just the fully keyed record", got)
	}
}

func TestDedupeMatchRecords_Idempotent(t *testing.T) {
	records := []models.RawRecord{
		matchRecord("understat", "Arsenal", "Chelsea", "2026-03-07", map[string]any{"venue": "Emirates"}),
		matchRecord("fbref", "FC Arsenal", "FC Chelsea", "2026-03-07", nil),
		matchRecord("understat", "Liverpool", "Everton", "2026-02-28", nil),
		matchRecord("sofascore", "Arsenal", "Chelsea", "2025-11-12", nil),
	}

	once := DedupeMatchRecords(records)
	twice := DedupeMatchRecords(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestDedupeMatchRecords_SortedMostRecentFirst(t *testing.T) {
	records := []models.RawRecord{
		matchRecord("a", "Arsenal", "Chelsea", "2025-11-12", nil),
		matchRecord("a", "Arsenal", "Chelsea", "2026-03-07", nil),
		matchRecord("a", "Arsenal", "Chelsea", "2026-01-20", nil),
	}

	got := DedupeMatchRecords(records)
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		prev, _ := got[i-1].TimeField(fieldKickoff)
		cur, _ := got[i].TimeField(fieldKickoff)
		if cur.After(prev) {
			t.Errorf("records not sorted most recent first: %v before %v", prev, cur)
		}
	}
}

func TestDedupeTeamRecords(t *testing.T) {
	now := time.Now()
	records := []models.RawRecord{
		{Source: "understat", Fields: map[string]any{fieldName: "Arsenal"}, FetchedAt: now.Add(-time.Hour)},
		{Source: "fbref", Fields: map[string]any{fieldName: "FC Arsenal", "statistics": map[string]float64{"xg": 1.9}}, FetchedAt: now},
		{Source: "sofascore", Fields: map[string]any{"country": "England"}, FetchedAt: now}, // nameless, dropped
		{Source: "fbref", Fields: map[string]any{fieldName: "Chelsea"}, FetchedAt: now.Add(-time.Minute)},
	}

	got := DedupeTeamRecords(records)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// The completest Arsenal record wins; newest fetch sorts first.
	if got[0].Source != "fbref" || got[0].StringField(fieldName) != "FC Arsenal" {
		t.Errorf("first record = %v, want the complete fbref Arsenal record", got[0])
	}
	if got[1].StringField(fieldName) != "Chelsea" {
		t.Errorf("second record = %v, want Chelsea", got[1])
	}
}

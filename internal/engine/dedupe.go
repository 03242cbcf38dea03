package engine

import (
	"sort"
	"time"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// Field names adapters agree on for match records.
const (
	fieldKickoff  = "datetime"
	fieldHomeTeam = "home_team"
	fieldAwayTeam = "away_team"
	fieldName     = "name"
)

// DedupeMatchRecords collapses match records that denote the same real-world
// match: same calendar date, same normalized home and away names. Records
// lacking a usable date or either team name are dropped. Within a group the
// record with the higher completeness score wins; ties keep the earliest-seen
// record. The result is sorted by kickoff, most recent first.
//
// The operation is idempotent: deduplicating an already-deduplicated list
// returns it unchanged.
func DedupeMatchRecords(records []models.RawRecord) []models.RawRecord {
	type slot struct {
		record  models.RawRecord
		kickoff time.Time
		seen    int
	}
	unique := make(map[string]slot)

	for i, rec := range records {
		kickoff, ok := rec.TimeField(fieldKickoff)
		if !ok {
			continue
		}
		home := rec.StringField(fieldHomeTeam)
		away := rec.StringField(fieldAwayTeam)
		if home == "" || away == "" {
			continue
		}

		key := models.MatchKey(kickoff, home, away)
		current, exists := unique[key]
		if !exists || rec.CompletenessScore() > current.record.CompletenessScore() {
			unique[key] = slot{record: rec, kickoff: kickoff, seen: i}
		}
	}

	slots := make([]slot, 0, len(unique))
	for _, s := range unique {
		slots = append(slots, s)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].kickoff.Equal(slots[j].kickoff) {
			return slots[i].kickoff.After(slots[j].kickoff)
		}
		return slots[i].seen < slots[j].seen
	})

	out := make([]models.RawRecord, len(slots))
	for i, s := range slots {
		out[i] = s.record
	}
	return out
}

// DedupeTeamRecords collapses team records resolving to the same name key.
// Records without a name are dropped. Completeness and tie rules match
// DedupeMatchRecords; the result is ordered by fetch time, most recent first.
func DedupeTeamRecords(records []models.RawRecord) []models.RawRecord {
	type slot struct {
		record models.RawRecord
		seen   int
	}
	unique := make(map[string]slot)

	for i, rec := range records {
		name := rec.StringField(fieldName)
		if name == "" {
			continue
		}

		key := models.TeamKey(name)
		current, exists := unique[key]
		if !exists || rec.CompletenessScore() > current.record.CompletenessScore() {
			unique[key] = slot{record: rec, seen: i}
		}
	}

	slots := make([]slot, 0, len(unique))
	for _, s := range unique {
		slots = append(slots, s)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].record.FetchedAt.Equal(slots[j].record.FetchedAt) {
			return slots[i].record.FetchedAt.After(slots[j].record.FetchedAt)
		}
		return slots[i].seen < slots[j].seen
	})

	out := make([]models.RawRecord, len(slots))
	for i, s := range slots {
		out[i] = s.record
	}
	return out
}

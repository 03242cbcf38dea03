package models

import (
	"time"
)

// RawRecord is one provider's partial view of an entity (team, match, h2h list).
// Records are transient: they live for the duration of one fusion pass and are
// discarded after merging.
type RawRecord struct {
	Source    string         `json:"source"`
	EntityRef string         `json:"entity_ref"`
	Fields    map[string]any `json:"fields"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// importantMatchFields rank otherwise-duplicate match records: the record
// populating more of these wins deduplication.
var importantMatchFields = []string{"statistics", "lineups", "events", "venue"}

// CompletenessScore counts the important populated fields of a match record.
func (r RawRecord) CompletenessScore() int {
	score := 0
	for _, key := range importantMatchFields {
		if v, ok := r.Fields[key]; ok && !isEmptyValue(v) {
			score++
		}
	}
	return score
}

// StringField returns a field as a trimmed string, or "" when absent or not a string.
func (r RawRecord) StringField(key string) string {
	v, ok := r.Fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// FloatField returns a numeric field. JSON decoding yields float64; int values
// from hand-built records are accepted too.
func (r RawRecord) FloatField(key string) (float64, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// TimeField parses a timestamp field. Accepts time.Time values and RFC3339 or
// date-only strings, which is what the providers deliver.
func (r RawRecord) TimeField(key string) (time.Time, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case map[string]string:
		return len(val) == 0
	case map[string]float64:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	}
	return false
}

package models

import (
	"testing"
	"time"
)

func TestCompletenessScore(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   int
	}{
		{"empty", nil, 0},
		{"irrelevant fields only", map[string]any{"home_team": "Arsenal"}, 0},
		{"one populated", map[string]any{"statistics": map[string]any{"shots": 12.0}}, 1},
		{"empty values do not count", map[string]any{"statistics": map[string]any{}, "venue": ""}, 0},
		{"all four", map[string]any{
			"statistics": map[string]float64{"shots": 12},
			"lineups":    []any{"squad"},
			"events":     []string{"goal"},
			"venue":      "Emirates Stadium",
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RawRecord{Fields: tt.fields}
			if got := r.CompletenessScore(); got != tt.want {
				t.Errorf("CompletenessScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFloatField(t *testing.T) {
	r := RawRecord{Fields: map[string]any{
		"f64": 1.5, "f32": float32(1.5), "int": 2, "int64": int64(3), "str": "1.5",
	}}

	for key, want := range map[string]float64{"f64": 1.5, "f32": 1.5, "int": 2, "int64": 3} {
		got, ok := r.FloatField(key)
		if !ok || got != want {
			t.Errorf("FloatField(%q) = %v, %v; want %v, true", key, got, ok, want)
		}
	}
	if _, ok := r.FloatField("str"); ok {
		t.Error("string field accepted as numeric")
	}
	if _, ok := r.FloatField("missing"); ok {
		t.Error("missing field accepted as numeric")
	}
}

func TestTimeField(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 20, 45, 0, 0, time.UTC)
	r := RawRecord{Fields: map[string]any{
		"typed":    kickoff,
		"rfc3339":  "2026-03-07T20:45:00Z",
		"datetime": "2026-03-07T20:45:00",
		"date":     "2026-03-07",
		"zero":     time.Time{},
		"garbage":  "next tuesday",
	}}

	for _, key := range []string{"typed", "rfc3339", "datetime", "date"} {
		got, ok := r.TimeField(key)
		if !ok {
			t.Errorf("TimeField(%q) did not parse", key)
			continue
		}
		if got.Format("2006-01-02") != "2026-03-07" {
			t.Errorf("TimeField(%q) = %v, want 2026-03-07", key, got)
		}
	}
	if _, ok := r.TimeField("zero"); ok {
		t.Error("zero time accepted")
	}
	if _, ok := r.TimeField("garbage"); ok {
		t.Error("unparseable string accepted")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.333333, 2.33},
		{1.236, 1.24},
		{-1.236, -1.24},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

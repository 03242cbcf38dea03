package models

import (
	"math"
	"time"
)

// XGEstimate is the consensus expected-goals pair for one match, fused from
// every provider that answered. This is the numeric-fusion output schema
// consumed by callers and persisted as a snapshot.
type XGEstimate struct {
	Home         float64   `json:"home"`
	Away         float64   `json:"away"`
	Total        float64   `json:"total"`
	Difference   float64   `json:"difference"`
	Sources      []string  `json:"sources"`
	SourcesCount int       `json:"sources_count"`
	Confidence   float64   `json:"confidence"`
	LastUpdated  time.Time `json:"last_updated"`
}

// MergedEntity is the attribute map produced by priority-order merging of
// same-entity records. Scalar attributes are set once by the first provider
// that supplies a non-empty value; nested maps (statistics, source_ids) are
// unioned across providers.
type MergedEntity map[string]any

// SourceIDs returns the per-provider native identifiers recorded during
// merging, or an empty map when no provider supplied any.
func (m MergedEntity) SourceIDs() map[string]string {
	out := map[string]string{}
	raw, ok := m["source_ids"]
	if !ok {
		return out
	}
	switch ids := raw.(type) {
	case map[string]string:
		for k, v := range ids {
			out[k] = v
		}
	case map[string]any:
		for k, v := range ids {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out
}

// Round2 rounds to two decimals, the precision used for all published values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

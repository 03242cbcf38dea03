package engine

import (
	"github.com/statfuse/statfuse/internal/pkg/config"
)

// DefaultSourceWeight is used for providers without a configured weight.
const DefaultSourceWeight = 0.5

// Registry maps each capability to its provider list in trying-priority order
// and carries per-provider reliability weights for the fusion weighted mean.
// The order is fixed at construction and never randomized: for field merging
// it is the sole determinant of which provider wins an attribute.
type Registry struct {
	order   map[string][]string
	weights map[string]float64
}

// NewRegistry builds a registry from config, falling back to the default
// tables for capabilities or weights the config does not mention.
func NewRegistry(cfg *config.EngineConfig) *Registry {
	r := defaultRegistry()
	if cfg == nil {
		return r
	}
	for capability, providers := range cfg.Capabilities {
		r.order[capability] = append([]string(nil), providers...)
	}
	for provider, weight := range cfg.SourceWeights {
		r.weights[provider] = weight
	}
	return r
}

func defaultRegistry() *Registry {
	return &Registry{
		order: map[string][]string{
			CapabilityXG:         {"understat", "fbref", "sofascore", "whoscored"},
			CapabilityTeamStats:  {"football-data", "api-football", "fbref", "sofascore"},
			CapabilityTeamEntity: {"football-data", "api-football", "fbref", "understat", "sofascore", "transfermarkt"},
			CapabilityHeadToHead: {"football-data", "api-football", "fbref", "sofascore", "worldfootball"},
		},
		weights: map[string]float64{
			"understat":     1.0,
			"fbref":         0.9,
			"sofascore":     0.8,
			"whoscored":     0.7,
			"football-data": 1.0,
			"api-football":  0.9,
			"transfermarkt": 0.7,
			"worldfootball": 0.6,
		},
	}
}

// Get returns the full provider order for a capability.
func (r *Registry) Get(capability string) []string {
	return r.order[capability]
}

// BestSourceFor returns the head of a capability's provider list.
func (r *Registry) BestSourceFor(capability string) (string, bool) {
	providers := r.order[capability]
	if len(providers) == 0 {
		return "", false
	}
	return providers[0], true
}

// Weight returns the reliability weight of a provider.
func (r *Registry) Weight(provider string) float64 {
	if w, ok := r.weights[provider]; ok {
		return w
	}
	return DefaultSourceWeight
}

// PriorityIndex orders records for merging: lower index means higher priority.
// Unknown providers sort after every registered one.
func (r *Registry) PriorityIndex(capability, provider string) int {
	for i, p := range r.order[capability] {
		if p == provider {
			return i
		}
	}
	return len(r.order[capability])
}

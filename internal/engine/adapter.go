package engine

import (
	"context"
	"time"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// Capability names shared between the registry, resolver and adapters.
const (
	CapabilityXG         = "xg"
	CapabilityTeamStats  = "team-stats"
	CapabilityTeamEntity = "team"
	CapabilityHeadToHead = "head-to-head"
)

// EntityRef identifies the entity a fetch is about. Adapters read the fields
// relevant to the capability; unset fields are simply ignored.
type EntityRef struct {
	Type      string            `json:"type"` // "team", "match" or "pair"
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name,omitempty"`
	HomeTeam  string            `json:"home_team,omitempty"`
	AwayTeam  string            `json:"away_team,omitempty"`
	Date      time.Time         `json:"date,omitempty"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

// Adapter is the contract every provider module implements. Fetch must return
// within the deadline carried by ctx and must not mutate shared state.
// Failures are reported as errors wrapping ErrSourceUnavailable or
// ErrSourceDataInvalid; the resolver never sees a panic cross this boundary.
type Adapter interface {
	// Name returns the provider identifier used in the priority registry.
	Name() string

	// Fetch returns the provider's partial record for the entity, or an error.
	Fetch(ctx context.Context, capability string, ref EntityRef) (*models.RawRecord, error)
}

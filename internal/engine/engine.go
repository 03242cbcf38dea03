package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/statfuse/statfuse/internal/pkg/config"
	"github.com/statfuse/statfuse/internal/pkg/models"
	"github.com/statfuse/statfuse/internal/pkg/storage"
)

// Engine is the multi-source fusion engine: it decides which providers to
// consult per request, collapses their partial records into one consensus
// answer with a quantified confidence, and memoizes results per entity key.
type Engine struct {
	cfg       *config.EngineConfig
	registry  *Registry
	resolver  *Resolver
	cache     *ConsensusCache
	store     storage.SnapshotStore
	catalogue *Catalogue

	cacheTTL     time.Duration
	h2hFreshness time.Duration
}

// MatchPrediction bundles the fused expectancy pair with the probabilistic
// outputs derived from it.
type MatchPrediction struct {
	XG        models.XGEstimate  `json:"xg"`
	BTTS      float64            `json:"btts"`
	OverUnder map[string]float64 `json:"over_under"`
}

// New wires the engine. The catalogue is owned by the caller and may be
// shared with other engines; the store may be nil, disabling persistence.
func New(cfg *config.EngineConfig, store storage.SnapshotStore, catalogue *Catalogue, adapters []Adapter) *Engine {
	cfg.ApplyDefaults()
	registry := NewRegistry(cfg)
	if catalogue == nil {
		catalogue = NewCatalogue()
	}
	cacheTTL := cfg.CacheTTLDuration()
	return &Engine{
		cfg:          cfg,
		registry:     registry,
		resolver:     NewResolver(registry, adapters, cfg.SourceTimeoutDuration(), cfg.FanInLimit),
		cache:        NewConsensusCache(cacheTTL),
		store:        store,
		catalogue:    catalogue,
		cacheTTL:     cacheTTL,
		h2hFreshness: cfg.H2HFreshnessDuration(),
	}
}

// Registry exposes the provider priority table, e.g. for diagnostics.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// MatchXG fuses every provider's expected-goals estimate for a match into one
// consensus pair. Concurrent calls for the same match share one fusion.
// Returns ErrInsufficientData when fewer sources answered than required or
// fused confidence stayed below the threshold.
func (e *Engine) MatchXG(ctx context.Context, ref EntityRef, force bool) (models.XGEstimate, error) {
	key := "xg/" + models.MatchKey(ref.Date, ref.HomeTeam, ref.AwayTeam)

	value, err := e.cache.Do(ctx, key, force, func(ctx context.Context) (any, error) {
		if !force {
			var stored models.XGEstimate
			if e.loadSnapshot(ctx, key, &stored) && e.freshEnough(stored.LastUpdated, e.cacheTTL) &&
				stored.Confidence >= e.cfg.ConfidenceThreshold {
				return stored, nil
			}
		}
		return e.fuseMatchXG(ctx, key, ref)
	})
	if err != nil {
		return models.XGEstimate{}, err
	}
	return value.(models.XGEstimate), nil
}

func (e *Engine) fuseMatchXG(ctx context.Context, key string, ref EntityRef) (models.XGEstimate, error) {
	records := e.resolver.FanIn(ctx, CapabilityXG, ref, validateXGRecord)

	samples := make([]Sample, 0, len(records))
	for _, rec := range records {
		home, _ := rec.FloatField("home")
		away, _ := rec.FloatField("away")
		samples = append(samples, Sample{
			Source: rec.Source,
			Weight: e.registry.Weight(rec.Source),
			Values: []float64{home, away},
		})
	}

	fused, ok := Fuse(2, samples)
	if !ok {
		return models.XGEstimate{}, fmt.Errorf("xg %s: %w", key, ErrInsufficientData)
	}
	if fused.SourceCount < e.cfg.MinRequiredSources || fused.Confidence < e.cfg.ConfidenceThreshold {
		slog.Warn("xg consensus rejected",
			"key", key, "sources", fused.SourceCount, "confidence", fused.Confidence)
		return models.XGEstimate{}, fmt.Errorf("xg %s: %d sources, confidence %.2f: %w",
			key, fused.SourceCount, fused.Confidence, ErrInsufficientData)
	}

	estimate := models.XGEstimate{
		Home:         models.Round2(fused.Values[0]),
		Away:         models.Round2(fused.Values[1]),
		Total:        models.Round2(fused.Values[0] + fused.Values[1]),
		Difference:   models.Round2(fused.Values[0] - fused.Values[1]),
		Sources:      fused.Sources,
		SourcesCount: fused.SourceCount,
		Confidence:   models.Round2(fused.Confidence),
		LastUpdated:  time.Now().UTC(),
	}

	e.saveSnapshot(ctx, key, estimate, e.cacheTTL)
	slog.Info("xg consensus computed", "key", key,
		"home", estimate.Home, "away", estimate.Away,
		"sources", estimate.SourcesCount, "confidence", estimate.Confidence)
	return estimate, nil
}

// validateXGRecord admits only records carrying a non-negative numeric value
// for both series of the estimate.
func validateXGRecord(rec models.RawRecord) error {
	for _, field := range []string{"home", "away"} {
		v, ok := rec.FloatField(field)
		if !ok {
			return fmt.Errorf("missing numeric field %q", field)
		}
		if v < 0 {
			return fmt.Errorf("negative value for %q", field)
		}
	}
	return nil
}

// MatchPrediction derives the secondary probabilistic outputs from the fused
// expectancy pair.
func (e *Engine) MatchPrediction(ctx context.Context, ref EntityRef, force bool) (MatchPrediction, error) {
	xg, err := e.MatchXG(ctx, ref, force)
	if err != nil {
		return MatchPrediction{}, err
	}

	btts, err := BTTSProbability(xg.Home, xg.Away)
	if err != nil {
		return MatchPrediction{}, err
	}
	overUnder, err := OverUnderProbabilities(xg.Total, nil)
	if err != nil {
		return MatchPrediction{}, err
	}

	for k, v := range overUnder {
		overUnder[k] = models.Round2(v)
	}
	return MatchPrediction{
		XG:        xg,
		BTTS:      models.Round2(btts),
		OverUnder: overUnder,
	}, nil
}

// TeamStats answers a single-canonical-answer query in first-success mode:
// providers are tried strictly in priority order and the first valid record
// becomes the answer.
func (e *Engine) TeamStats(ctx context.Context, ref EntityRef) (models.MergedEntity, error) {
	record, err := e.resolver.FirstSuccess(ctx, CapabilityTeamStats, ref, nil)
	if err != nil {
		return nil, err
	}
	// The sufficiency gate applies in both modes; first-success yields exactly
	// one source and cannot satisfy a higher configured minimum.
	if e.cfg.MinRequiredSources > 1 {
		return nil, fmt.Errorf("team stats %s: 1 source, %d required: %w",
			ref.Name, e.cfg.MinRequiredSources, ErrInsufficientData)
	}
	return e.registry.MergeRecords(CapabilityTeamStats, []models.RawRecord{*record}), nil
}

// Team fuses every provider's view of a club into one merged entity. The
// canonical id comes from the injected catalogue; providers' native ids are
// collected under source_ids.
func (e *Engine) Team(ctx context.Context, name string, force bool) (models.MergedEntity, error) {
	canonicalID := e.catalogue.ResolveOrAdopt(name)
	key := "teams/" + canonicalID

	value, err := e.cache.Do(ctx, key, force, func(ctx context.Context) (any, error) {
		if !force {
			var stored models.MergedEntity
			if e.loadSnapshot(ctx, key, &stored) {
				if lastUpdated, ok := storedTime(stored); ok && e.freshEnough(lastUpdated, e.cacheTTL) {
					return stored, nil
				}
			}
		}

		ref := EntityRef{Type: "team", ID: canonicalID, Name: name}
		// Every provider record feeds the merge: providers whose name variants
		// resolve to the same key still contribute distinct fields and ids.
		records := e.resolver.FanIn(ctx, CapabilityTeamEntity, ref, nil)
		if len(records) < e.cfg.MinRequiredSources {
			return nil, fmt.Errorf("team %s: %d sources: %w", name, len(records), ErrInsufficientData)
		}

		merged := e.registry.MergeRecords(CapabilityTeamEntity, records)
		merged["team_id"] = canonicalID
		merged["last_updated"] = time.Now().UTC().Format(time.RFC3339)
		e.saveSnapshot(ctx, key, merged, e.cacheTTL)
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers get a copy; the cached entity stays immutable.
	return cloneEntity(value.(models.MergedEntity)), nil
}

// HeadToHead fuses the meeting history of two teams. Stored snapshots are
// reused within the freshness window; a snapshot stored for (b, a) answers a
// query for (a, b) through Reverse.
func (e *Engine) HeadToHead(ctx context.Context, team1, team2 string, force bool) (models.HeadToHead, error) {
	id1 := e.catalogue.ResolveOrAdopt(team1)
	id2 := e.catalogue.ResolveOrAdopt(team2)
	key := "h2h/" + id1 + "_" + id2
	reverseKey := "h2h/" + id2 + "_" + id1

	value, err := e.cache.Do(ctx, key, force, func(ctx context.Context) (any, error) {
		if !force {
			var stored models.HeadToHead
			if e.loadSnapshot(ctx, key, &stored) && e.freshEnough(stored.LastUpdated, e.h2hFreshness) {
				return stored, nil
			}
			if e.loadSnapshot(ctx, reverseKey, &stored) && e.freshEnough(stored.LastUpdated, e.h2hFreshness) {
				return stored.Reverse(), nil
			}
		}

		ref := EntityRef{Type: "pair", HomeTeam: team1, AwayTeam: team2}
		records := e.resolver.FanIn(ctx, CapabilityHeadToHead, ref, nil)
		if len(records) < e.cfg.MinRequiredSources {
			return nil, fmt.Errorf("h2h %s vs %s: %d sources: %w", team1, team2, len(records), ErrInsufficientData)
		}

		var all []models.MatchRecord
		sources := make([]string, 0, len(records))
		for _, rec := range records {
			matches := matchRecordsFromField(rec, "matches")
			if len(matches) == 0 {
				continue
			}
			sources = append(sources, rec.Source)
			all = append(all, matches...)
		}

		deduped := DedupeH2HMatches(all)
		if len(deduped) == 0 {
			return nil, fmt.Errorf("h2h %s vs %s: no meetings found: %w", team1, team2, ErrInsufficientData)
		}
		sort.Strings(sources)

		h2h := ComputeHeadToHead(team1, team2, deduped)
		h2h.Team1ID = id1
		h2h.Team2ID = id2
		h2h.Matches = deduped
		h2h.Sources = sources
		h2h.LastUpdated = time.Now().UTC()

		e.saveSnapshot(ctx, key, h2h, e.h2hFreshness)
		return h2h, nil
	})
	if err != nil {
		return models.HeadToHead{}, err
	}
	return value.(models.HeadToHead), nil
}

// matchRecordsFromField extracts a list of historical meetings from a record
// field. Adapters constructed in-process pass typed slices; records decoded
// from JSON arrive as []any and are re-decoded.
func matchRecordsFromField(rec models.RawRecord, field string) []models.MatchRecord {
	raw, ok := rec.Fields[field]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []models.MatchRecord:
		out := make([]models.MatchRecord, len(v))
		copy(out, v)
		for i := range out {
			if out[i].Source == "" {
				out[i].Source = rec.Source
			}
		}
		return out
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var out []models.MatchRecord
		if err := json.Unmarshal(data, &out); err != nil {
			return nil
		}
		for i := range out {
			if out[i].Source == "" {
				out[i].Source = rec.Source
			}
		}
		return out
	}
	return nil
}

func storedTime(entity models.MergedEntity) (time.Time, bool) {
	raw, ok := entity["last_updated"].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (e *Engine) freshEnough(lastUpdated time.Time, window time.Duration) bool {
	if lastUpdated.IsZero() || window <= 0 {
		return false
	}
	return time.Since(lastUpdated) < window
}

func (e *Engine) loadSnapshot(ctx context.Context, key string, out any) bool {
	if e.store == nil {
		return false
	}
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("snapshot read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("snapshot decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (e *Engine) saveSnapshot(ctx context.Context, key string, value any, ttl time.Duration) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("snapshot encode failed", "key", key, "error", err)
		return
	}
	if err := e.store.Set(ctx, key, data, ttl); err != nil {
		slog.Warn("snapshot write failed", "key", key, "error", err)
	}
}

// Package replay implements the source-adapter contract on top of
// pre-structured records loaded from a local JSON dump, the same way
// open-data snapshots are served without touching the network. It backs the
// fusion-service binary and integration-style tests.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/statfuse/statfuse/internal/engine"
	"github.com/statfuse/statfuse/internal/pkg/models"
)

// Adapter serves canned records for one provider.
type Adapter struct {
	name    string
	latency time.Duration
	failure error
	records map[string]map[string]any
}

var _ engine.Adapter = (*Adapter)(nil)

func New(name string) *Adapter {
	return &Adapter{name: name, records: make(map[string]map[string]any)}
}

func (a *Adapter) Name() string {
	return a.name
}

// Put registers the record served for (capability, ref).
func (a *Adapter) Put(capability string, ref engine.EntityRef, fields map[string]any) {
	a.records[recordKey(capability, ref)] = fields
}

// WithLatency makes every fetch wait, for exercising timeouts.
func (a *Adapter) WithLatency(d time.Duration) *Adapter {
	a.latency = d
	return a
}

// WithFailure makes every fetch fail, for exercising fallback.
func (a *Adapter) WithFailure(err error) *Adapter {
	a.failure = err
	return a
}

func (a *Adapter) Fetch(ctx context.Context, capability string, ref engine.EntityRef) (*models.RawRecord, error) {
	if a.latency > 0 {
		select {
		case <-time.After(a.latency):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", engine.ErrSourceUnavailable, ctx.Err())
		}
	}
	if a.failure != nil {
		return nil, a.failure
	}

	fields, ok := a.records[recordKey(capability, ref)]
	if !ok {
		return nil, fmt.Errorf("%w: no record for %s", engine.ErrSourceDataInvalid, capability)
	}

	return &models.RawRecord{
		Source:    a.name,
		EntityRef: recordKey(capability, ref),
		Fields:    fields,
		FetchedAt: time.Now(),
	}, nil
}

func recordKey(capability string, ref engine.EntityRef) string {
	switch ref.Type {
	case "match":
		return capability + "|" + models.MatchKey(ref.Date, ref.HomeTeam, ref.AwayTeam)
	case "pair":
		return capability + "|" + models.TeamKey(ref.HomeTeam) + "_" + models.TeamKey(ref.AwayTeam)
	default:
		name := ref.Name
		if name == "" {
			name = ref.ID
		}
		return capability + "|" + models.TeamKey(name)
	}
}

// Dump is the on-disk fixtures format: one entry per provider.
type Dump struct {
	Providers []ProviderDump `json:"providers"`
}

type ProviderDump struct {
	Name    string       `json:"name"`
	Records []RecordDump `json:"records"`
}

type RecordDump struct {
	Capability string           `json:"capability"`
	Ref        engine.EntityRef `json:"ref"`
	Fields     map[string]any   `json:"fields"`
}

// LoadFile builds one adapter per provider from a JSON dump.
func LoadFile(path string) ([]engine.Adapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file: %w", err)
	}

	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file: %w", err)
	}

	adapters := make([]engine.Adapter, 0, len(dump.Providers))
	for _, p := range dump.Providers {
		adapter := New(p.Name)
		for _, r := range p.Records {
			adapter.Put(r.Capability, r.Ref, r.Fields)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// ValidateFunc checks a provider record before it is admitted to fusion.
// Returning an error excludes the record and classifies it as invalid data.
type ValidateFunc func(models.RawRecord) error

// Resolver drives provider calls for a capability, either sequentially in
// priority order (first-success) or concurrently (fan-in). A provider that
// errors or times out contributes nothing; it never aborts the other calls.
type Resolver struct {
	registry   *Registry
	adapters   map[string]Adapter
	timeout    time.Duration
	fanInLimit int
}

func NewResolver(registry *Registry, adapters []Adapter, timeout time.Duration, fanInLimit int) *Resolver {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if fanInLimit <= 0 {
		fanInLimit = len(byName)
	}
	return &Resolver{
		registry:   registry,
		adapters:   byName,
		timeout:    timeout,
		fanInLimit: fanInLimit,
	}
}

// FirstSuccess tries providers strictly in registry order and returns the
// first non-empty, valid record. Provider failures are logged and skipped.
// When the list is exhausted the call reports insufficient data; when the
// caller's deadline expires it stops early with the context error.
func (r *Resolver) FirstSuccess(ctx context.Context, capability string, ref EntityRef, validate ValidateFunc) (*models.RawRecord, error) {
	for _, provider := range r.registry.Get(capability) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		adapter, ok := r.adapters[provider]
		if !ok {
			continue
		}

		record, err := r.fetch(ctx, adapter, capability, ref, validate)
		if err != nil {
			slog.Warn("provider skipped",
				"capability", capability, "provider", provider, "error", err)
			continue
		}

		slog.Debug("provider answered", "capability", capability, "provider", provider)
		return record, nil
	}

	return nil, fmt.Errorf("%s: no provider answered: %w", capability, ErrInsufficientData)
}

// FanIn queries every registered provider for the capability concurrently,
// each call bounded by its own timeout, and returns all valid responses.
// If the caller's deadline expires mid-flight, the responses that already
// arrived are returned; sufficiency is the caller's decision.
func (r *Resolver) FanIn(ctx context.Context, capability string, ref EntityRef, validate ValidateFunc) []models.RawRecord {
	providers := r.registry.Get(capability)

	var (
		mu      sync.Mutex
		records []models.RawRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanInLimit)

	for _, provider := range providers {
		adapter, ok := r.adapters[provider]
		if !ok {
			continue
		}

		provider := provider
		g.Go(func() error {
			record, err := r.fetch(gctx, adapter, capability, ref, validate)
			if err != nil {
				// One provider failing must not abort the others.
				slog.Warn("provider excluded from fusion",
					"capability", capability, "provider", provider, "error", err)
				return nil
			}

			mu.Lock()
			records = append(records, *record)
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	return records
}

// fetch runs one adapter call under its own timeout and validates the result.
func (r *Resolver) fetch(ctx context.Context, adapter Adapter, capability string, ref EntityRef, validate ValidateFunc) (*models.RawRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	record, err := adapter.Fetch(callCtx, capability, ref)
	if err != nil {
		return nil, &SourceError{Source: adapter.Name(), Err: err}
	}
	if record == nil || len(record.Fields) == 0 {
		return nil, &SourceError{Source: adapter.Name(), Err: ErrSourceDataInvalid}
	}
	if validate != nil {
		if err := validate(*record); err != nil {
			return nil, &SourceError{Source: adapter.Name(), Err: fmt.Errorf("%w: %v", ErrSourceDataInvalid, err)}
		}
	}

	if record.Source == "" {
		record.Source = adapter.Name()
	}
	if record.FetchedAt.IsZero() {
		record.FetchedAt = time.Now()
	}
	return record, nil
}

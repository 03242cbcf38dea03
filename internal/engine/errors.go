package engine

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Individual provider failures (unavailable, invalid) are
// recovered locally and excluded from fusion; only InsufficientData reaches
// the caller, and always as an explicit error rather than a falsified result.
var (
	// ErrSourceUnavailable marks a network or timeout failure of one provider.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSourceDataInvalid marks a malformed or incomplete provider record.
	ErrSourceDataInvalid = errors.New("source data invalid")

	// ErrInsufficientData is surfaced when fewer usable sources answered than
	// required, or fused confidence fell below the threshold.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrAmbiguousEntityMatch marks a collision of two distinct real-world
	// entities on one key. The key heuristics cannot detect this themselves;
	// the error exists for callers that reconcile conflicting merges.
	ErrAmbiguousEntityMatch = errors.New("ambiguous entity match")

	// ErrInvalidExpectancy rejects negative goal expectancies in the
	// probability model.
	ErrInvalidExpectancy = errors.New("goal expectancy must be non-negative")
)

// SourceError attributes a failure to the provider that caused it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists under a path.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore is the persistence contract used by the engine: a key-value
// store holding JSON snapshots of fused results (merged entities, xg
// estimates, head-to-head histories). Staleness is decided by the engine from
// the last_updated field inside the snapshot, not by the store.
type SnapshotStore interface {
	// Get returns the snapshot stored under path, or ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Set stores a snapshot under path. A zero ttl means no expiry.
	Set(ctx context.Context, path string, value []byte, ttl time.Duration) error

	// Close releases the underlying connection.
	Close() error
}

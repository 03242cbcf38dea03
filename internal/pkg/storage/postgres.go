package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/statfuse/statfuse/internal/pkg/config"
)

var _ SnapshotStore = (*PostgresStore)(nil)

// PostgresStore keeps snapshots in a single UPSERT-ed table. Expiry is stored
// alongside the value and checked on read; expired rows read as missing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(cfg *config.PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL snapshot store initialized successfully")
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		path VARCHAR(500) PRIMARY KEY,
		value JSONB NOT NULL,
		expires_at TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots(expires_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, path string) ([]byte, error) {
	query := `
	SELECT value FROM snapshots
	WHERE path = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`
	var value []byte
	err := s.db.QueryRowContext(ctx, query, path).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", path, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, path string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}

	query := `
	INSERT INTO snapshots (path, value, expires_at, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (path) DO UPDATE SET
		value = EXCLUDED.value,
		expires_at = EXCLUDED.expires_at,
		updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, path, value, expiresAt); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/statfuse/statfuse/internal/pkg/config"
)

var _ SnapshotStore = (*RedisStore)(nil)

// RedisStore keeps snapshots in Redis with per-key TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := r.client.Get(ctx, path).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", path, err)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, path string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, path, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", path, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

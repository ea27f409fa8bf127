// Package redis provides a Redis-backed key-value store for storefront state.
// It serves deployments where the storefront state should outlive the local
// filesystem; the default remains the file-backed bbolt store.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/urbanhaven/storefront/internal/storage"
)

const keyPrefix = "storefront:"

// pingTimeout caps the connectivity check performed on Open.
const pingTimeout = 2 * time.Second

// Store provides a Redis-backed key-value store.
type Store struct {
	client *redis.Client
}

// Open connects to the Redis instance described by url and verifies
// connectivity with a single ping.
func Open(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Close releases the underlying Redis client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Load fetches the value stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("storage key is required")
	}

	value, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}

// Save stores value under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}

	if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Delete removes key from the store. Absent keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}

	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

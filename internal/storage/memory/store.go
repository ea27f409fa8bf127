// Package memory provides an in-memory key-value store. It backs tests and
// the degraded mode where no durable store is configured: state persists for
// the process lifetime and starts empty on every boot.
package memory

import (
	"context"
	"sync"

	"github.com/urbanhaven/storefront/internal/storage"
)

// Store is a mutex-guarded in-memory key-value store.
// The zero value is ready to use.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{values: map[string][]byte{}}
}

// Load fetches the value stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Save stores value under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key from the store. Absent keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

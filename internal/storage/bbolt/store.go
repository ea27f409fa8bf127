// Package bbolt provides a file-backed key-value store for storefront state.
package bbolt

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urbanhaven/storefront/internal/storage"
	"go.etcd.io/bbolt"
)

const stateBucket = "storefront"

// Store provides a BoltDB-backed key-value store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load fetches the value stored under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("storage key is required")
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		stored := bucket.Get([]byte(key))
		if stored == nil {
			return storage.ErrNotFound
		}
		value = append([]byte(nil), stored...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Save stores value under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

// Delete removes key from the store. Absent keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bucket.Delete([]byte(key))
	})
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		if err != nil {
			return fmt.Errorf("create state bucket: %w", err)
		}
		return nil
	})
}

// Package storage defines the key-value persistence boundary for the
// storefront. Each key holds one independently serialized JSON document;
// there are no cross-key transactions.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested key is missing.
var ErrNotFound = errors.New("key not found")

// Keys for persisted storefront state.
const (
	KeyCart    = "cart"
	KeyUsers   = "users"
	KeySession = "session"
	KeyLocale  = "locale"
)

// KV persists serialized values under string keys.
type KV interface {
	// Load returns the stored value for key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

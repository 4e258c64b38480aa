// Package storage defines the key/value transport that durable todo state is
// written through. Each backend stores opaque byte payloads under string keys.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValue persists opaque payloads under string keys.
// implementations can be file-based, database-backed, cloud-storage based, etc.
type KeyValue interface {
	// Get returns the payload stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous payload.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the payload under key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

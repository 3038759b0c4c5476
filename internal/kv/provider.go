// Package kv defines the key-value backing store abstraction the note store
// is built on: a whole-value map with no partial updates and no transactions.
package kv

import (
	"context"
	"errors"
)

// ErrNoKey is returned by Get when the key has never been written.
var ErrNoKey = errors.New("kv: key not found")

// Provider is the interface for backing store implementations.
// Values are opaque byte blobs; callers round-trip whole JSON documents.
type Provider interface {
	// Get returns the value stored under key, or ErrNoKey.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

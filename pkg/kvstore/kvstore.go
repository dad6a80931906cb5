// Package kvstore provides the durable string key-value storage the
// storefront uses for the anonymous cart snapshot and session state. It is
// the Go counterpart of browser local storage: a flat namespace of string
// keys with last-write-wins semantics and no cross-client coordination.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("key not found")

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key from the store. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}

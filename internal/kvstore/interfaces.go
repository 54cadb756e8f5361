package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Store reads and writes opaque string values under opaque string keys.
type Store interface {
	// Get returns the value stored under key. Returns ErrNotFound (possibly
	// wrapped) when no value exists.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the value stored under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// Enumerable is implemented by stores that can list their keys. Backends
// without native enumeration (the OS keyring) simply do not implement it;
// callers must treat a non-Enumerable store as "no keys visible", not as an
// error.
type Enumerable interface {
	// Keys returns every key currently present, in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

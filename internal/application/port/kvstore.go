package port

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KeyValueBackend when no blob is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueBackend is the durable medium behind the favicon cache and failure
// registry. Implementations may fail; callers go through kvstore.BlobStore,
// which absorbs every error.
type KeyValueBackend interface {
	// Get returns the blob stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

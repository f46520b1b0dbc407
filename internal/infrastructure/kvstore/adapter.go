// Package kvstore persists JSON blobs under string keys for the favicon subsystem.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/logging"
)

// ErrQuotaExceeded is returned when a serialized blob is larger than the store quota.
var ErrQuotaExceeded = errors.New("blob exceeds store quota")

// BlobStore is the single point of contact between the favicon code and the
// durable medium. Nothing escapes it: read failures look like absent keys and
// write failures are dropped after being logged.
type BlobStore struct {
	backend port.KeyValueBackend
	quota   int
}

// NewBlobStore wraps backend. quota bounds the serialized size of a single
// blob in bytes; zero or negative means unbounded.
func NewBlobStore(backend port.KeyValueBackend, quota int) *BlobStore {
	return &BlobStore{backend: backend, quota: quota}
}

// Read decodes the blob stored under key into v.
// Returns false when the key is absent, the backend fails or the blob is not valid JSON.
func (s *BlobStore) Read(ctx context.Context, key string, v any) bool {
	log := logging.FromContext(ctx)

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read blob, treating as absent")
		}
		return false
	}

	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt blob, treating as absent")
		return false
	}
	return true
}

// Write serializes v and stores it under key. Returns false when the write was dropped.
func (s *BlobStore) Write(ctx context.Context, key string, v any) bool {
	if err := s.write(ctx, key, v); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to persist blob, write dropped")
		return false
	}
	return true
}

// Remove deletes key. Returns false when the delete was dropped.
func (s *BlobStore) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete blob")
		return false
	}
	return true
}

func (s *BlobStore) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	if s.quota > 0 && len(raw) > s.quota {
		return fmt.Errorf("%d bytes over %d: %w", len(raw), s.quota, ErrQuotaExceeded)
	}
	return s.backend.Set(ctx, key, raw)
}

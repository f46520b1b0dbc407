package favicon

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/logging"
)

// FailureRegistry remembers domains whose acquisition failed recently.
// Persisted as {domain: failedAtEpochMillis}.
type FailureRegistry struct {
	store    *kvstore.BlobStore
	cooldown time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

// NewFailureRegistry creates a registry persisted in store.
func NewFailureRegistry(store *kvstore.BlobStore, cooldown time.Duration, now func() time.Time) *FailureRegistry {
	if now == nil {
		now = time.Now
	}
	return &FailureRegistry{store: store, cooldown: cooldown, now: now}
}

// IsSuppressed reports whether domain failed less than one cooldown ago.
func (r *FailureRegistry) IsSuppressed(ctx context.Context, domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.load(ctx)[domain]
	return ok && rec.Suppressed(r.now(), r.cooldown)
}

// RecordFailure marks domain as failed now.
func (r *FailureRegistry) RecordFailure(ctx context.Context, domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	records[domain] = entity.FailureRecord{Domain: domain, FailedAt: r.now()}
	r.save(ctx, records)
}

// Clear drops the record of a single domain.
func (r *FailureRegistry) Clear(ctx context.Context, domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	if _, ok := records[domain]; !ok {
		return
	}
	delete(records, domain)
	r.save(ctx, records)
}

// ClearAll forgets every failed domain. The icon cache is not touched.
func (r *FailureRegistry) ClearAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Remove(ctx, FailuresKey)
}

// SweepExpired drops records whose cooldown has elapsed and returns how many were dropped.
func (r *FailureRegistry) SweepExpired(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	now := r.now()
	dropped := 0
	for domain, rec := range records {
		if !rec.Suppressed(now, r.cooldown) {
			delete(records, domain)
			dropped++
		}
	}
	if dropped > 0 {
		r.save(ctx, records)
	}
	return dropped
}

// Count returns the number of domains currently suppressed.
func (r *FailureRegistry) Count(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	n := 0
	for _, rec := range r.load(ctx) {
		if rec.Suppressed(now, r.cooldown) {
			n++
		}
	}
	return n
}

// load must be called with r.mu held. Malformed records are skipped.
func (r *FailureRegistry) load(ctx context.Context) map[string]entity.FailureRecord {
	raw := map[string]json.RawMessage{}
	records := make(map[string]entity.FailureRecord)
	if !r.store.Read(ctx, FailuresKey, &raw) {
		return records
	}

	for domain, msg := range raw {
		var millis int64
		if err := json.Unmarshal(msg, &millis); err != nil || millis <= 0 || domain == "" {
			logging.FromContext(ctx).Debug().Str("domain", domain).Msg("skipping malformed failure record")
			continue
		}
		records[domain] = entity.FailureRecord{Domain: domain, FailedAt: time.UnixMilli(millis)}
	}
	return records
}

func (r *FailureRegistry) save(ctx context.Context, records map[string]entity.FailureRecord) {
	blob := make(map[string]int64, len(records))
	for domain, rec := range records {
		blob[domain] = rec.FailedAt.UnixMilli()
	}
	r.store.Write(ctx, FailuresKey, blob)
}

package favicon

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/logging"
)

// cacheRecord is the persisted shape of one entry:
// {data, timestamp (last access, epoch ms), expires (epoch ms)}.
type cacheRecord struct {
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Expires   int64  `json:"expires"`
}

// PutResult describes what a Put did to the cache.
type PutResult struct {
	// Stored is true when the entry is present after the eviction pass.
	Stored  bool
	Evicted []string
	Entries int
	Bytes   int
}

// Cache maps domains to encoded icons under a total byte budget,
// evicting the least recently accessed entries first.
type Cache struct {
	store    *kvstore.BlobStore
	ttl      time.Duration
	maxEntry int
	maxTotal int
	now      func() time.Time
	mu       sync.Mutex
}

// NewCache creates a cache persisted in store.
func NewCache(store *kvstore.BlobStore, ttl time.Duration, maxEntry, maxTotal int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		store:    store,
		ttl:      ttl,
		maxEntry: maxEntry,
		maxTotal: maxTotal,
		now:      now,
	}
}

// Get returns the icon cached for domain. Expired entries are swept first;
// a hit refreshes the entry's last access time.
func (c *Cache) Get(ctx context.Context, domain string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	now := c.now()
	dirty := c.sweepLocked(entries, now) > 0

	entry, ok := entries[domain]
	if ok {
		entry.LastAccessed = now
		entries[domain] = entry
		dirty = true
	}
	if dirty {
		c.save(ctx, entries)
	}
	if !ok {
		return "", false
	}
	return entry.Data, true
}

// Put stores data for domain. Oversized or empty icons are rejected without
// touching the cache. After insertion, entries are evicted oldest access first
// until the total fits the budget; the new entry gets no special protection.
func (c *Cache) Put(ctx context.Context, domain, data string) PutResult {
	log := logging.FromContext(ctx)

	if data == "" || len(data) > c.maxEntry {
		log.Debug().Str("domain", domain).Int("bytes", len(data)).Int("max", c.maxEntry).Msg("favicon rejected by cache")
		return PutResult{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	now := c.now()
	entries[domain] = entity.CacheEntry{
		Domain:       domain,
		Data:         data,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    now.Add(c.ttl),
	}

	evicted := c.evictLocked(entries)
	if len(evicted) > 0 {
		log.Debug().Strs("evicted", evicted).Msg("favicon cache over budget")
	}
	c.save(ctx, entries)

	_, stored := entries[domain]
	return PutResult{
		Stored:  stored,
		Evicted: evicted,
		Entries: len(entries),
		Bytes:   totalSize(entries),
	}
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	n := c.sweepLocked(entries, c.now())
	if n > 0 {
		c.save(ctx, entries)
	}
	return n
}

// Stats returns count and size of the persisted cache without modifying it.
func (c *Cache) Stats(ctx context.Context) entity.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load(ctx)
	return entity.CacheStats{
		Count:      len(entries),
		TotalBytes: totalSize(entries),
		MaxBytes:   c.maxTotal,
	}
}

func (c *Cache) sweepLocked(entries map[string]entity.CacheEntry, now time.Time) int {
	n := 0
	for domain, entry := range entries {
		if entry.Expired(now) {
			delete(entries, domain)
			n++
		}
	}
	return n
}

// evictLocked removes entries in ascending last-access order, ties broken by
// domain name, until the total fits maxTotal.
func (c *Cache) evictLocked(entries map[string]entity.CacheEntry) []string {
	total := totalSize(entries)
	if total <= c.maxTotal {
		return nil
	}

	order := make([]entity.CacheEntry, 0, len(entries))
	for _, entry := range entries {
		order = append(order, entry)
	}
	slices.SortFunc(order, func(a, b entity.CacheEntry) int {
		if n := a.LastAccessed.Compare(b.LastAccessed); n != 0 {
			return n
		}
		return cmp.Compare(a.Domain, b.Domain)
	})

	var evicted []string
	for _, entry := range order {
		if total <= c.maxTotal {
			break
		}
		delete(entries, entry.Domain)
		total -= entry.Size()
		evicted = append(evicted, entry.Domain)
	}
	return evicted
}

// load must be called with c.mu held. Records missing data or expiry are dropped.
func (c *Cache) load(ctx context.Context) map[string]entity.CacheEntry {
	raw := map[string]json.RawMessage{}
	entries := make(map[string]entity.CacheEntry)
	if !c.store.Read(ctx, CacheKey, &raw) {
		return entries
	}

	for domain, msg := range raw {
		var rec cacheRecord
		if err := json.Unmarshal(msg, &rec); err != nil || domain == "" || rec.Data == "" || rec.Expires <= 0 {
			logging.FromContext(ctx).Debug().Str("domain", domain).Msg("skipping malformed cache record")
			continue
		}
		expires := time.UnixMilli(rec.Expires)
		entries[domain] = entity.CacheEntry{
			Domain:       domain,
			Data:         rec.Data,
			CreatedAt:    expires.Add(-c.ttl),
			LastAccessed: time.UnixMilli(rec.Timestamp),
			ExpiresAt:    expires,
		}
	}
	return entries
}

func (c *Cache) save(ctx context.Context, entries map[string]entity.CacheEntry) {
	blob := make(map[string]cacheRecord, len(entries))
	for domain, entry := range entries {
		blob[domain] = cacheRecord{
			Data:      entry.Data,
			Timestamp: entry.LastAccessed.UnixMilli(),
			Expires:   entry.ExpiresAt.UnixMilli(),
		}
	}
	c.store.Write(ctx, CacheKey, blob)
}

func totalSize(entries map[string]entity.CacheEntry) int {
	total := 0
	for _, entry := range entries {
		total += entry.Size()
	}
	return total
}

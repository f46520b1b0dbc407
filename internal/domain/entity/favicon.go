package entity

import "time"

// IconSource tells where a resolved icon came from.
type IconSource string

const (
	IconSourceNone   IconSource = "none"
	IconSourceCache  IconSource = "cache"
	IconSourceProxy  IconSource = "proxy"
	IconSourceDirect IconSource = "direct"
)

// IconResult is the outcome of a favicon resolution: either an inline-encoded
// icon or absent. Absent means "render the placeholder glyph".
type IconResult struct {
	Data   string
	Source IconSource
}

// Absent returns the "no icon available" result.
func Absent() IconResult {
	return IconResult{Source: IconSourceNone}
}

// Found returns a result carrying an encoded icon.
func Found(data string, source IconSource) IconResult {
	if data == "" {
		return Absent()
	}
	return IconResult{Data: data, Source: source}
}

// OK reports whether the result carries an icon.
func (r IconResult) OK() bool {
	return r.Data != ""
}

// CacheEntry is one cached icon keyed by domain.
type CacheEntry struct {
	Domain       string
	Data         string
	CreatedAt    time.Time
	LastAccessed time.Time
	ExpiresAt    time.Time
}

// Size is the number of bytes the entry counts against the cache budget.
func (e CacheEntry) Size() int {
	return len(e.Data)
}

// Expired reports whether the entry must be treated as absent at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// FailureRecord remembers the last failed acquisition for a domain.
type FailureRecord struct {
	Domain   string
	FailedAt time.Time
}

// Suppressed reports whether the domain is still inside its cooldown window.
func (r FailureRecord) Suppressed(now time.Time, cooldown time.Duration) bool {
	return now.Sub(r.FailedAt) < cooldown
}

// CacheStats is a read-only snapshot of the favicon cache for display.
type CacheStats struct {
	Count       int `json:"count"`
	TotalBytes  int `json:"totalBytes"`
	MaxBytes    int `json:"maxBytes"`
	FailedCount int `json:"failedCount"`
}

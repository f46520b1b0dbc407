package port

import (
	"context"
	"time"

	"github.com/bnema/shelf/internal/domain/entity"
)

// IconTier is one network acquisition strategy of the resolution pipeline.
type IconTier interface {
	// Name identifies the tier in logs and metrics.
	Name() string

	// Fetch returns an inline-encoded icon for domain or an error.
	Fetch(ctx context.Context, domain string) (string, error)
}

// FaviconResolver resolves bookmark URLs to inline-encoded icons.
// It never fails: an absent result means "show the placeholder".
type FaviconResolver interface {
	Resolve(ctx context.Context, rawURL string) entity.IconResult
	ForceRefresh(ctx context.Context, rawURL string) entity.IconResult
}

// FaviconMetrics receives favicon pipeline observations.
type FaviconMetrics interface {
	ObserveResolution(source entity.IconSource)
	ObserveTier(tier string, ok bool, elapsed time.Duration)
	ObserveEvictions(n int)
	SetCacheSize(entries, bytes int)
}

// NopFaviconMetrics discards every observation.
type NopFaviconMetrics struct{}

func (NopFaviconMetrics) ObserveResolution(entity.IconSource)     {}
func (NopFaviconMetrics) ObserveTier(string, bool, time.Duration) {}
func (NopFaviconMetrics) ObserveEvictions(int)                    {}
func (NopFaviconMetrics) SetCacheSize(int, int)                   {}

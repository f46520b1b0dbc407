// Package favicon resolves, caches and remembers failures for bookmark favicons.
package favicon

import (
	"net/http"
	"time"

	"github.com/bnema/shelf/internal/application/port"
)

// Persisted blob keys.
const (
	CacheKey    = "favicon_cache"
	FailuresKey = "failed_favicon_domains"
)

const (
	// DefaultCacheTTL is how long a cached icon stays valid.
	DefaultCacheTTL = 30 * 24 * time.Hour
	// DefaultFailureCooldown is how long a failed domain is left alone.
	DefaultFailureCooldown = time.Hour
	// DefaultMaxIconBytes is the soft size bound of a raw icon.
	DefaultMaxIconBytes = 10 * 1024
	// DefaultMaxEntryBytes bounds one encoded entry (raw bound plus base64 overhead).
	DefaultMaxEntryBytes = DefaultMaxIconBytes * 3 / 2
	// DefaultMaxTotalBytes bounds the sum of all cached entries.
	DefaultMaxTotalBytes = 2 * 1024 * 1024
	// DefaultIconServiceURL is the public icon lookup service; %s is the domain.
	DefaultIconServiceURL = "https://www.google.com/s2/favicons?sz=64&domain=%s"
	// DefaultTierTimeout bounds each network tier.
	DefaultTierTimeout = 5 * time.Second
	// DefaultDirectScheme is the scheme used when probing a domain directly.
	DefaultDirectScheme = "https"

	// maxDownloadBytes caps any single HTTP body read by a tier.
	maxDownloadBytes = 1 << 20
)

// DefaultDirectPaths are the conventional icon locations, tried in order.
var DefaultDirectPaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/apple-touch-icon.png",
	"/apple-touch-icon-152x152.png",
	"/apple-touch-icon-180x180.png",
	"/android-chrome-192x192.png",
}

// Options configures the favicon service. Zero values fall back to the defaults above.
type Options struct {
	CacheTTL        time.Duration
	FailureCooldown time.Duration
	MaxEntryBytes   int
	MaxTotalBytes   int

	// ProxyURL is an optional indirection endpoint; the icon service URL is
	// passed to it as the "url" query parameter.
	ProxyURL       string
	IconServiceURL string
	DirectScheme   string
	DirectPaths    []string
	TierTimeout    time.Duration
	// MaxDimension downscales direct-fetch icons larger than this many pixels.
	// Zero keeps the natural size.
	MaxDimension int
	// DedupeInflight shares one network attempt between concurrent
	// resolutions of the same domain.
	DedupeInflight bool

	HTTPClient *http.Client
	Metrics    port.FaviconMetrics
	Now        func() time.Time

	// Proxy and Direct replace the built-in network tiers when set.
	Proxy  port.IconTier
	Direct port.IconTier
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.FailureCooldown <= 0 {
		o.FailureCooldown = DefaultFailureCooldown
	}
	if o.MaxEntryBytes <= 0 {
		o.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if o.MaxTotalBytes <= 0 {
		o.MaxTotalBytes = DefaultMaxTotalBytes
	}
	if o.IconServiceURL == "" {
		o.IconServiceURL = DefaultIconServiceURL
	}
	if o.DirectScheme == "" {
		o.DirectScheme = DefaultDirectScheme
	}
	if len(o.DirectPaths) == 0 {
		o.DirectPaths = DefaultDirectPaths
	}
	if o.TierTimeout <= 0 {
		o.TierTimeout = DefaultTierTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.TierTimeout}
	}
	if o.Metrics == nil {
		o.Metrics = port.NopFaviconMetrics{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

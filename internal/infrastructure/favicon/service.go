package favicon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/domain/entity"
	domainurl "github.com/bnema/shelf/internal/domain/url"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/logging"
)

// Service implements port.FaviconResolver.
// It coordinates the cache, the failure registry and the network tiers.
type Service struct {
	cache    *Cache
	failures *FailureRegistry
	tiers    []port.IconTier
	opts     Options
	flights  singleflight.Group
}

var _ port.FaviconResolver = (*Service)(nil)

// NewService creates a favicon service persisting its state in store.
func NewService(store *kvstore.BlobStore, opts Options) *Service {
	opts = opts.withDefaults()

	proxy := opts.Proxy
	if proxy == nil {
		proxy = NewProxyTier(opts.HTTPClient, opts.ProxyURL, opts.IconServiceURL)
	}
	direct := opts.Direct
	if direct == nil {
		direct = NewDirectTier(opts.HTTPClient, opts.DirectScheme, opts.DirectPaths, opts.MaxDimension)
	}

	return &Service{
		cache:    NewCache(store, opts.CacheTTL, opts.MaxEntryBytes, opts.MaxTotalBytes, opts.Now),
		failures: NewFailureRegistry(store, opts.FailureCooldown, opts.Now),
		tiers:    []port.IconTier{proxy, direct},
		opts:     opts,
	}
}

// Resolve returns the icon for the URL's domain: cache first, then the
// network tiers unless the domain is in its failure cooldown.
func (s *Service) Resolve(ctx context.Context, rawURL string) (res entity.IconResult) {
	ctx = logging.WithURL(ctx, rawURL)
	defer s.recoverTo(ctx, &res)

	domain, err := domainurl.ExtractHost(rawURL)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("favicon resolve skipped")
		return s.finish(entity.Absent())
	}
	ctx = logging.WithDomain(ctx, domain)

	s.failures.SweepExpired(ctx)
	if data, ok := s.cache.Get(ctx, domain); ok {
		return s.finish(entity.Found(data, entity.IconSourceCache))
	}
	if s.failures.IsSuppressed(ctx, domain) {
		logging.FromContext(ctx).Trace().Msg("favicon domain suppressed")
		return s.finish(entity.Absent())
	}

	return s.finish(s.acquire(ctx, domain, false))
}

// ForceRefresh skips the cache and the failure cooldown and always tries the
// network tiers. Success clears the domain's failure record; failure is not recorded.
func (s *Service) ForceRefresh(ctx context.Context, rawURL string) (res entity.IconResult) {
	ctx = logging.WithURL(ctx, rawURL)
	defer s.recoverTo(ctx, &res)

	domain, err := domainurl.ExtractHost(rawURL)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("favicon refresh skipped")
		return s.finish(entity.Absent())
	}
	ctx = logging.WithDomain(ctx, domain)

	return s.finish(s.acquire(ctx, domain, true))
}

// PeekCache returns the cached icon for domain without any network access.
func (s *Service) PeekCache(ctx context.Context, domain string) entity.IconResult {
	s.failures.SweepExpired(ctx)
	if data, ok := s.cache.Get(ctx, domain); ok {
		return entity.Found(data, entity.IconSourceCache)
	}
	return entity.Absent()
}

// ClearFailureRegistry forgets every failed domain.
func (s *Service) ClearFailureRegistry(ctx context.Context) {
	s.failures.ClearAll(ctx)
	logging.FromContext(ctx).Info().Msg("favicon failure registry cleared")
}

// ClearFailure forgets a single failed domain.
func (s *Service) ClearFailure(ctx context.Context, domain string) {
	s.failures.Clear(ctx, domain)
}

// Stats returns a snapshot of the cache and the number of suppressed domains.
func (s *Service) Stats(ctx context.Context) entity.CacheStats {
	stats := s.cache.Stats(ctx)
	stats.FailedCount = s.failures.Count(ctx)
	s.opts.Metrics.SetCacheSize(stats.Count, stats.TotalBytes)
	return stats
}

// acquire runs the network tiers, sharing one attempt between concurrent
// callers for the same domain and mode when deduplication is enabled.
func (s *Service) acquire(ctx context.Context, domain string, force bool) entity.IconResult {
	if !s.opts.DedupeInflight {
		return s.fetchTiers(ctx, domain, force)
	}

	key := fmt.Sprintf("%s|%t", domain, force)
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		return s.fetchTiers(flightCtx, domain, force), nil
	})

	select {
	case r := <-ch:
		res, _ := r.Val.(entity.IconResult)
		return res
	case <-ctx.Done():
		return entity.Absent()
	}
}

func (s *Service) fetchTiers(ctx context.Context, domain string, force bool) entity.IconResult {
	log := logging.FromContext(ctx)

	for _, tier := range s.tiers {
		if ctx.Err() != nil {
			break
		}
		data, err := s.runTier(ctx, tier, domain)
		if err != nil {
			log.Debug().Err(err).Str("tier", tier.Name()).Msg("favicon tier failed")
			continue
		}

		s.store(ctx, domain, data)
		s.failures.Clear(ctx, domain)
		log.Debug().Str("tier", tier.Name()).Int("bytes", len(data)).Msg("favicon acquired")
		return entity.Found(data, sourceOf(tier))
	}

	// A caller that went away says nothing about the domain.
	if err := ctx.Err(); err != nil {
		log.Debug().Err(err).Msg("favicon acquisition abandoned")
		return entity.Absent()
	}
	if !force {
		s.failures.RecordFailure(ctx, domain)
		log.Info().Dur("cooldown", s.opts.FailureCooldown).Msg("favicon acquisition failed, domain suppressed")
	}
	return entity.Absent()
}

// runTier bounds the tier with the configured timeout and rejects results
// the cache could never hold.
func (s *Service) runTier(ctx context.Context, tier port.IconTier, domain string) (data string, err error) {
	tctx, cancel := context.WithTimeout(ctx, s.opts.TierTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tier %s panicked: %v", tier.Name(), r)
		}
		s.opts.Metrics.ObserveTier(tier.Name(), err == nil, time.Since(start))
	}()

	data, err = tier.Fetch(tctx, domain)
	if err != nil {
		return "", err
	}
	if data == "" {
		return "", ErrEmptyBody
	}
	if len(data) > s.opts.MaxEntryBytes {
		return "", fmt.Errorf("%w: %d bytes encoded", ErrTooLarge, len(data))
	}
	return data, nil
}

func (s *Service) store(ctx context.Context, domain, data string) {
	put := s.cache.Put(ctx, domain, data)
	if len(put.Evicted) > 0 {
		s.opts.Metrics.ObserveEvictions(len(put.Evicted))
	}
	s.opts.Metrics.SetCacheSize(put.Entries, put.Bytes)
}

func (s *Service) finish(res entity.IconResult) entity.IconResult {
	s.opts.Metrics.ObserveResolution(res.Source)
	return res
}

func (s *Service) recoverTo(ctx context.Context, res *entity.IconResult) {
	if r := recover(); r != nil {
		logging.FromContext(ctx).Warn().Interface("panic", r).Msg("favicon resolution recovered")
		*res = entity.Absent()
	}
}

func sourceOf(tier port.IconTier) entity.IconSource {
	switch tier.Name() {
	case tierProxy:
		return entity.IconSourceProxy
	case tierDirect:
		return entity.IconSourceDirect
	default:
		return entity.IconSource(tier.Name())
	}
}

package favicon_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/infrastructure/favicon"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
)

var errOffline = errors.New("offline")

type serviceFixture struct {
	svc    *favicon.Service
	store  *kvstore.BlobStore
	proxy  *stubTier
	direct *stubTier
	clock  *fakeClock
}

func newServiceFixture(t *testing.T, mutate func(*favicon.Options)) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		proxy:  &stubTier{name: "proxy", err: errOffline},
		direct: &stubTier{name: "direct", err: errOffline},
		clock:  newFakeClock(),
		store:  newStore(),
	}
	opts := favicon.Options{
		Proxy:  f.proxy,
		Direct: f.direct,
		Now:    f.clock.Now,
	}
	if mutate != nil {
		mutate(&opts)
	}
	f.svc = favicon.NewService(f.store, opts)
	return f
}

func TestService_ResolveUsesProxyFirst(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:image/png;base64,UFJPWFk=", nil)

	res := f.svc.Resolve(ctx, "https://github.com/bnema")
	assert.Equal(t, entity.Found("data:image/png;base64,UFJPWFk=", entity.IconSourceProxy), res)
	assert.Equal(t, 0, f.direct.Calls())
}

func TestService_ResolveFallsBackToDirect(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.direct.set("data:image/png;base64,RElSRUNU", nil)

	res := f.svc.Resolve(ctx, "https://github.com/bnema")
	assert.Equal(t, entity.IconSourceDirect, res.Source)
	assert.Equal(t, 1, f.proxy.Calls())
	assert.Equal(t, 1, f.direct.Calls())
}

func TestService_IdempotentHit(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:image/png;base64,UFJPWFk=", nil)

	first := f.svc.Resolve(ctx, "https://github.com/a")
	second := f.svc.Resolve(ctx, "https://github.com/b")

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, entity.IconSourceCache, second.Source)
	assert.Equal(t, 1, f.proxy.Calls())
}

func TestService_FailureSuppressesUntilCooldownElapses(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)

	assert.False(t, f.svc.Resolve(ctx, "https://github.com").OK())
	assert.Equal(t, 1, f.svc.Stats(ctx).FailedCount)

	assert.False(t, f.svc.Resolve(ctx, "https://github.com").OK())
	assert.Equal(t, 1, f.proxy.Calls(), "suppressed domains do no network work")

	f.clock.Advance(favicon.DefaultFailureCooldown)
	f.proxy.set("data:image/png;base64,UFJPWFk=", nil)
	res := f.svc.Resolve(ctx, "https://github.com")
	assert.True(t, res.OK())
	assert.Equal(t, 2, f.proxy.Calls())
	assert.Equal(t, 0, f.svc.Stats(ctx).FailedCount)
}

func TestService_ForceRefreshBypassesSuppression(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)

	require.False(t, f.svc.Resolve(ctx, "https://github.com").OK())
	require.Equal(t, 1, f.svc.Stats(ctx).FailedCount)

	f.proxy.set("data:image/png;base64,UFJPWFk=", nil)
	require.False(t, f.svc.Resolve(ctx, "https://github.com").OK())

	res := f.svc.ForceRefresh(ctx, "https://github.com")
	assert.Equal(t, entity.IconSourceProxy, res.Source)
	assert.Equal(t, 2, f.proxy.Calls())
	assert.Equal(t, 0, f.svc.Stats(ctx).FailedCount)

	assert.Equal(t, entity.IconSourceCache, f.svc.Resolve(ctx, "https://github.com").Source)
}

func TestService_ForceRefreshBypassesCache(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:old", nil)
	require.True(t, f.svc.Resolve(ctx, "https://github.com").OK())

	f.proxy.set("data:new", nil)
	res := f.svc.ForceRefresh(ctx, "https://github.com")
	assert.Equal(t, "data:new", res.Data)
	assert.Equal(t, "data:new", f.svc.PeekCache(ctx, "github.com").Data)
}

func TestService_ForceRefreshFailureIsNotRecorded(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)

	assert.False(t, f.svc.ForceRefresh(ctx, "https://github.com").OK())
	assert.Equal(t, 0, f.svc.Stats(ctx).FailedCount)
}

func TestService_DummyDomainSkipsDirectFetch(t *testing.T) {
	ctx := testCtx()
	transport := &countingTransport{}
	proxy := &stubTier{name: "proxy", err: errOffline}
	svc := favicon.NewService(newStore(), favicon.Options{
		Proxy:      proxy,
		HTTPClient: &http.Client{Transport: transport},
		Now:        newFakeClock().Now,
	})

	res := svc.Resolve(ctx, "https://example.com/page")
	assert.Equal(t, entity.Absent(), res)
	assert.Equal(t, 1, proxy.Calls(), "proxy tier still runs for dummy domains")
	assert.Equal(t, 0, transport.Calls())
	assert.Equal(t, 1, svc.Stats(ctx).FailedCount)

	svc.Resolve(ctx, "https://example.com/other")
	assert.Equal(t, 1, proxy.Calls())
}

func TestService_MalformedURLIsAbsent(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)

	for _, raw := range []string{"not a url", "", "://", "mailto:someone"} {
		assert.Equal(t, entity.Absent(), f.svc.Resolve(ctx, raw), raw)
		assert.Equal(t, entity.Absent(), f.svc.ForceRefresh(ctx, raw), raw)
	}
	assert.Equal(t, 0, f.proxy.Calls())
	assert.Equal(t, 0, f.svc.Stats(ctx).FailedCount)
}

func TestService_OversizedResultFallsThrough(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:"+strings.Repeat("A", favicon.DefaultMaxEntryBytes), nil)
	f.direct.set("data:small", nil)

	res := f.svc.Resolve(ctx, "https://github.com")
	assert.Equal(t, entity.Found("data:small", entity.IconSourceDirect), res)
}

func TestService_TierTimeout(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, func(o *favicon.Options) { o.TierTimeout = 20 * time.Millisecond })
	f.proxy.fetch = func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.direct.set("data:direct", nil)

	res := f.svc.Resolve(ctx, "https://github.com")
	assert.Equal(t, entity.IconSourceDirect, res.Source)
}

func TestService_TierPanicIsContained(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.fetch = func(context.Context, string) (string, error) { panic("boom") }
	f.direct.set("data:direct", nil)

	res := f.svc.Resolve(ctx, "https://github.com")
	assert.Equal(t, entity.IconSourceDirect, res.Source)
}

func TestService_DedupesConcurrentResolutions(t *testing.T) {
	ctx := testCtx()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	f := newServiceFixture(t, func(o *favicon.Options) { o.DedupeInflight = true })
	f.proxy.fetch = func(context.Context, string) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return "data:shared", nil
	}

	const callers = 5
	results := make([]entity.IconResult, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.svc.Resolve(ctx, "https://github.com")
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.proxy.Calls())
	for _, res := range results {
		assert.Equal(t, "data:shared", res.Data)
	}
}

func TestService_CanceledCallerGetsAbsent(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := newServiceFixture(t, func(o *favicon.Options) { o.DedupeInflight = true })
	f.proxy.fetch = func(context.Context, string) (string, error) {
		<-release
		return "data:late", nil
	}

	ctx, cancel := context.WithTimeout(testCtx(), 20*time.Millisecond)
	defer cancel()
	assert.Equal(t, entity.Absent(), f.svc.Resolve(ctx, "https://github.com"))
}

func TestService_CanceledCallerDoesNotSuppressDomain(t *testing.T) {
	f := newServiceFixture(t, func(o *favicon.Options) { o.DedupeInflight = false })
	live := func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "data:live", nil
	}
	f.proxy.fetch = live
	f.direct.fetch = live

	ctx, cancel := context.WithCancel(testCtx())
	cancel()
	assert.Equal(t, entity.Absent(), f.svc.Resolve(ctx, "https://github.com"))
	assert.Equal(t, 0, f.svc.Stats(testCtx()).FailedCount)

	res := f.svc.Resolve(testCtx(), "https://github.com")
	assert.Equal(t, entity.Found("data:live", entity.IconSourceProxy), res)
}

func TestService_PeekCacheSweepsExpiredFailures(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.svc.Resolve(ctx, "https://gitlab.com")

	f.clock.Advance(2 * favicon.DefaultFailureCooldown)
	f.svc.PeekCache(ctx, "github.com")

	var persisted map[string]int64
	require.True(t, f.store.Read(ctx, favicon.FailuresKey, &persisted))
	assert.Empty(t, persisted)
}

func TestService_PeekCacheNeverFetches(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:x", nil)

	assert.False(t, f.svc.PeekCache(ctx, "github.com").OK())
	assert.Equal(t, 0, f.proxy.Calls())

	f.svc.Resolve(ctx, "https://github.com")
	assert.Equal(t, entity.Found("data:x", entity.IconSourceCache), f.svc.PeekCache(ctx, "github.com"))
}

func TestService_ClearFailureRegistryKeepsCache(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.proxy.set("data:x", nil)
	f.svc.Resolve(ctx, "https://github.com")

	f.proxy.set("", errOffline)
	f.svc.Resolve(ctx, "https://gitlab.com")
	f.svc.Resolve(ctx, "https://codeberg.org")
	require.Equal(t, 2, f.svc.Stats(ctx).FailedCount)

	f.svc.ClearFailureRegistry(ctx)

	stats := f.svc.Stats(ctx)
	assert.Equal(t, 0, stats.FailedCount)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, len("data:x"), stats.TotalBytes)
	assert.Equal(t, favicon.DefaultMaxTotalBytes, stats.MaxBytes)

	f.svc.Resolve(ctx, "https://gitlab.com")
	assert.Equal(t, 4, f.proxy.Calls())
}

func TestService_ClearFailure(t *testing.T) {
	ctx := testCtx()
	f := newServiceFixture(t, nil)
	f.svc.Resolve(ctx, "https://gitlab.com")
	f.svc.Resolve(ctx, "https://codeberg.org")

	f.svc.ClearFailure(ctx, "gitlab.com")
	assert.Equal(t, 1, f.svc.Stats(ctx).FailedCount)
}

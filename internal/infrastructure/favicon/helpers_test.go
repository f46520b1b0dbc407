package favicon_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/logging"
)

func testCtx() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromConfigValues("disabled", "console"))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newStore() *kvstore.BlobStore {
	return kvstore.NewBlobStore(kvstore.NewMemoryBackend(), 0)
}

// stubTier is a scripted network tier.
type stubTier struct {
	name string

	mu    sync.Mutex
	data  string
	err   error
	calls int
	fetch func(ctx context.Context, domain string) (string, error)
}

func (s *stubTier) Name() string { return s.name }

func (s *stubTier) Fetch(ctx context.Context, domain string) (string, error) {
	s.mu.Lock()
	s.calls++
	fetch, data, err := s.fetch, s.data, s.err
	s.mu.Unlock()

	if fetch != nil {
		return fetch(ctx, domain)
	}
	return data, err
}

func (s *stubTier) set(data string, err error) {
	s.mu.Lock()
	s.data, s.err = data, err
	s.mu.Unlock()
}

func (s *stubTier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// clientFor returns a client that sends every request to srv regardless of host.
func clientFor(srv *httptest.Server) *http.Client {
	addr := srv.Listener.Addr().String()
	return &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}
}

type countingTransport struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return nil, io.ErrUnexpectedEOF
}

func (c *countingTransport) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

package favicon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	domainurl "github.com/bnema/shelf/internal/domain/url"
	"github.com/bnema/shelf/internal/logging"
)

const (
	tierProxy  = "proxy"
	tierDirect = "direct"
)

var (
	// ErrTooLarge is returned when a response body exceeds the download cap.
	ErrTooLarge = errors.New("response body too large")
	// ErrUnexpectedStatus is returned for non-200 responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDummyDomain is returned when probing a placeholder domain.
	ErrDummyDomain = errors.New("placeholder domain")
	// ErrEmptyBody is returned when a 200 response carries no bytes.
	ErrEmptyBody = errors.New("empty response body")
)

// download performs a GET and returns the body and its declared Content-Type.
func download(ctx context.Context, client *http.Client, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxDownloadBytes {
		return nil, "", ErrTooLarge
	}
	if len(body) == 0 {
		return nil, "", ErrEmptyBody
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// ProxyTier asks a public icon service for the domain's icon, optionally
// through an indirection proxy.
type ProxyTier struct {
	client     *http.Client
	proxyURL   string
	serviceURL string
}

// NewProxyTier creates the proxy tier. serviceURL must contain one %s verb
// for the domain. When proxyURL is empty the service is called directly.
func NewProxyTier(client *http.Client, proxyURL, serviceURL string) *ProxyTier {
	return &ProxyTier{client: client, proxyURL: proxyURL, serviceURL: serviceURL}
}

func (t *ProxyTier) Name() string { return tierProxy }

// Target returns the URL requested for domain.
func (t *ProxyTier) Target(domain string) string {
	service := fmt.Sprintf(t.serviceURL, url.QueryEscape(domain))
	if t.proxyURL == "" {
		return service
	}
	sep := "?"
	if strings.Contains(t.proxyURL, "?") {
		sep = "&"
	}
	return t.proxyURL + sep + "url=" + url.QueryEscape(service)
}

// Fetch returns the service's answer as a data URI of its own MIME type.
func (t *ProxyTier) Fetch(ctx context.Context, domain string) (string, error) {
	body, contentType, err := download(ctx, t.client, t.Target(domain))
	if err != nil {
		return "", err
	}
	mime, ok := imageMIME(contentType, body)
	if !ok {
		return "", fmt.Errorf("%w: content type %q", ErrNotImage, contentType)
	}
	return EncodeDataURI(mime, body), nil
}

// DirectTier tries the conventional icon paths of the domain itself and
// re-encodes the first decodable one as PNG.
type DirectTier struct {
	client *http.Client
	scheme string
	paths  []string
	maxDim int
}

// NewDirectTier creates the direct tier.
func NewDirectTier(client *http.Client, scheme string, paths []string, maxDim int) *DirectTier {
	return &DirectTier{client: client, scheme: scheme, paths: paths, maxDim: maxDim}
}

func (t *DirectTier) Name() string { return tierDirect }

// Fetch tries each path in order; the first one that decodes wins.
func (t *DirectTier) Fetch(ctx context.Context, domain string) (string, error) {
	if domainurl.IsDummyDomain(domain) {
		return "", ErrDummyDomain
	}

	log := logging.FromContext(ctx)
	var lastErr error
	for _, p := range t.paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		target := (&url.URL{Scheme: t.scheme, Host: domain, Path: p}).String()
		body, _, err := download(ctx, t.client, target)
		if err != nil {
			log.Trace().Err(err).Str("url", target).Msg("direct fetch miss")
			lastErr = err
			continue
		}
		data, err := reencodePNG(body, t.maxDim)
		if err != nil {
			log.Trace().Err(err).Str("url", target).Msg("direct fetch undecodable")
			lastErr = err
			continue
		}
		return data, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no direct paths configured")
	}
	return "", fmt.Errorf("direct fetch %s: %w", domain, lastErr)
}

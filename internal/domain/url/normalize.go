// Package url provides URL helpers shared by the bookmark and favicon code.
package url

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoHost is returned when a URL parses but carries no hostname.
var ErrNoHost = errors.New("url has no host")

// dummyDomains are placeholder hosts that never serve a real favicon.
var dummyDomains = map[string]struct{}{
	"example.com":     {},
	"example.org":     {},
	"example.net":     {},
	"localhost":       {},
	"127.0.0.1":       {},
	"0.0.0.0":         {},
	"test.com":        {},
	"demo.com":        {},
	"sample.com":      {},
	"dummy.com":       {},
	"fake.com":        {},
	"placeholder.com": {},
}

// Normalize adds https:// prefix if missing for URL-like inputs.
// Returns the input unchanged if it already has a scheme or doesn't look like a URL.
func Normalize(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(input, "http://"),
		strings.HasPrefix(input, "https://"),
		strings.HasPrefix(input, "file://"),
		strings.HasPrefix(input, "about:"):
		return input
	}

	if strings.Contains(input, ".") && !strings.Contains(input, " ") {
		return "https://" + input
	}

	return input
}

// ExtractHost returns the hostname of rawURL without port, preserving case.
// Unlike ExtractDomain-style helpers it does not strip "www.": the favicon
// cache is keyed by the exact host a bookmark points to.
func ExtractHost(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", ErrNoHost
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("parse %q: %w", rawURL, ErrNoHost)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("parse %q: %w", rawURL, ErrNoHost)
	}
	return host, nil
}

// IsDummyDomain reports whether domain is a placeholder/test hostname.
func IsDummyDomain(domain string) bool {
	_, ok := dummyDomains[strings.ToLower(domain)]
	return ok
}

// IsInlineIcon reports whether an icon reference is already self-contained.
func IsInlineIcon(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// IsLegacyIconReference reports whether an icon reference is a bare external
// URL (the format used before icons were cache-backed).
func IsLegacyIconReference(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// IsPlaceholderIcon reports whether an icon reference points at the bundled
// placeholder glyph rather than a real icon. Such references mean "no icon".
func IsPlaceholderIcon(ref string) bool {
	return strings.HasPrefix(ref, "/") && strings.Contains(ref, "default-favicon")
}

// SanitizeKeyForFilename replaces unsafe filesystem characters with underscores.
func SanitizeKeyForFilename(key string) string {
	replacer := strings.NewReplacer(
		":", "_",
		"/", "_",
		"\\", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"..", "_",
	)
	return replacer.Replace(key)
}

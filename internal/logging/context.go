package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	return withStr(ctx, "component", component)
}

// WithDomain creates a child logger with a domain field
func WithDomain(ctx context.Context, domain string) context.Context {
	return withStr(ctx, "domain", domain)
}

// WithURL creates a child logger with a url field
func WithURL(ctx context.Context, url string) context.Context {
	return withStr(ctx, "url", url)
}

// WithBookmarkID creates a child logger with a bookmark_id field
func WithBookmarkID(ctx context.Context, id string) context.Context {
	return withStr(ctx, "bookmark_id", id)
}

func withStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx)
	child := logger.With().Str(key, value).Logger()
	return WithContext(ctx, child)
}

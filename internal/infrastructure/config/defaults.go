package config

import (
	"slices"

	"github.com/bnema/shelf/internal/application/usecase"
	"github.com/bnema/shelf/internal/infrastructure/favicon"
)

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Favicon: FaviconConfig{
			Store:           StoreSQLite,
			StoreQuotaBytes: 5 * 1024 * 1024,
			CacheTTL:        favicon.DefaultCacheTTL,
			FailureCooldown: favicon.DefaultFailureCooldown,
			MaxEntryBytes:   favicon.DefaultMaxEntryBytes,
			MaxTotalBytes:   favicon.DefaultMaxTotalBytes,
			IconServiceURL:  favicon.DefaultIconServiceURL,
			DirectScheme:    favicon.DefaultDirectScheme,
			DirectPaths:     slices.Clone(favicon.DefaultDirectPaths),
			TierTimeout:     favicon.DefaultTierTimeout,
			DedupeInflight:  true,
			JobConcurrency:  usecase.DefaultJobConcurrency,
		},
		Valkey: ValkeyConfig{
			KeyPrefix: "shelf:",
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:8377",
			Metrics: true,
		},
	}
}

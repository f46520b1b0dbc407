// Package config loads, validates and watches the shelf configuration.
package config

import "time"

const dirPerm = 0o755

// StoreKind selects the persistence medium of the favicon cache and failure registry.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreFile   StoreKind = "file"
	StoreMemory StoreKind = "memory"
	StoreValkey StoreKind = "valkey"
)

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
	Favicon  FaviconConfig  `mapstructure:"favicon" toml:"favicon"`
	Valkey   ValkeyConfig   `mapstructure:"valkey" toml:"valkey"`
	Server   ServerConfig   `mapstructure:"server" toml:"server"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path defaults to $XDG_DATA_HOME/shelf/shelf.sqlite.
	Path string `mapstructure:"path" toml:"path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// FaviconConfig tunes favicon acquisition and caching.
type FaviconConfig struct {
	Store StoreKind `mapstructure:"store" toml:"store"`
	// StoreDir is used by the file store; defaults to $XDG_STATE_HOME/shelf/favicons.
	StoreDir string `mapstructure:"store_dir" toml:"store_dir"`
	// StoreQuotaBytes caps a single persisted blob. Zero disables the cap.
	StoreQuotaBytes int `mapstructure:"store_quota_bytes" toml:"store_quota_bytes"`

	CacheTTL        time.Duration `mapstructure:"cache_ttl" toml:"cache_ttl"`
	FailureCooldown time.Duration `mapstructure:"failure_cooldown" toml:"failure_cooldown"`
	MaxEntryBytes   int           `mapstructure:"max_entry_bytes" toml:"max_entry_bytes"`
	MaxTotalBytes   int           `mapstructure:"max_total_bytes" toml:"max_total_bytes"`

	ProxyURL       string        `mapstructure:"proxy_url" toml:"proxy_url"`
	IconServiceURL string        `mapstructure:"icon_service_url" toml:"icon_service_url"`
	DirectScheme   string        `mapstructure:"direct_scheme" toml:"direct_scheme"`
	DirectPaths    []string      `mapstructure:"direct_paths" toml:"direct_paths"`
	TierTimeout    time.Duration `mapstructure:"tier_timeout" toml:"tier_timeout"`
	MaxDimension   int           `mapstructure:"max_dimension" toml:"max_dimension"`

	DedupeInflight bool `mapstructure:"dedupe_inflight" toml:"dedupe_inflight"`
	JobConcurrency int  `mapstructure:"job_concurrency" toml:"job_concurrency"`
}

// ValkeyConfig holds the connection used when favicon.store = "valkey".
type ValkeyConfig struct {
	Address   string `mapstructure:"address" toml:"address"`
	Username  string `mapstructure:"username" toml:"username"`
	Password  string `mapstructure:"password" toml:"password"`
	DB        int    `mapstructure:"db" toml:"db"`
	KeyPrefix string `mapstructure:"key_prefix" toml:"key_prefix"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Listen  string `mapstructure:"listen" toml:"listen"`
	Metrics bool   `mapstructure:"metrics" toml:"metrics"`
}

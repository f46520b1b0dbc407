package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a configuration manager reading
// $XDG_CONFIG_HOME/shelf/config.toml and SHELF_* environment variables.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	v.AddConfigPath(configDir)

	// SHELF_FAVICON_CACHE_TTL, SHELF_DATABASE_PATH, ...
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names shared with logging.NewFromEnv.
	if err := v.BindEnv("logging.level", "SHELF_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind SHELF_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "SHELF_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind SHELF_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v}, nil
}

// Load reads the configuration file, writing a default one on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.build()
	if err != nil {
		return err
	}
	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		configFile := m.viper.ConfigFileUsed()
		if configFile == "" {
			configFile, _ = GetConfigFile()
		}
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		configDir, _ := GetConfigDir()
		return fmt.Errorf("failed to create default config at %s: %w\nTry creating the directory manually or check permissions", configDir, createErr)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
	}
	return nil
}

// build unmarshals, fills path defaults, normalizes and validates.
func (m *Manager) build() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(), err)
	}
	if err := fillPaths(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func fillPaths(config *Config) error {
	if config.Database.Path == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		config.Database.Path = dbPath
	}
	if config.Favicon.StoreDir == "" {
		dir, err := GetFaviconStoreDir()
		if err != nil {
			return fmt.Errorf("failed to get favicon store directory: %w", err)
		}
		config.Favicon.StoreDir = dir
	}
	return nil
}

func normalizeConfig(config *Config) {
	config.Favicon.Store = StoreKind(strings.ToLower(strings.TrimSpace(string(config.Favicon.Store))))
	if config.Favicon.Store == "" {
		config.Favicon.Store = StoreSQLite
	}
	config.Favicon.DirectScheme = strings.ToLower(strings.TrimSpace(config.Favicon.DirectScheme))
	config.Favicon.ProxyURL = strings.TrimSpace(config.Favicon.ProxyURL)
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	configCopy.Favicon.DirectPaths = append([]string(nil), m.config.Favicon.DirectPaths...)
	return &configCopy
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setDefaults registers every key so env overrides and the first-run file see them.
func (m *Manager) setDefaults() {
	d := DefaultConfig()

	m.viper.SetDefault("database.path", d.Database.Path)

	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)

	m.viper.SetDefault("favicon.store", string(d.Favicon.Store))
	m.viper.SetDefault("favicon.store_dir", d.Favicon.StoreDir)
	m.viper.SetDefault("favicon.store_quota_bytes", d.Favicon.StoreQuotaBytes)
	m.viper.SetDefault("favicon.cache_ttl", d.Favicon.CacheTTL.String())
	m.viper.SetDefault("favicon.failure_cooldown", d.Favicon.FailureCooldown.String())
	m.viper.SetDefault("favicon.max_entry_bytes", d.Favicon.MaxEntryBytes)
	m.viper.SetDefault("favicon.max_total_bytes", d.Favicon.MaxTotalBytes)
	m.viper.SetDefault("favicon.proxy_url", d.Favicon.ProxyURL)
	m.viper.SetDefault("favicon.icon_service_url", d.Favicon.IconServiceURL)
	m.viper.SetDefault("favicon.direct_scheme", d.Favicon.DirectScheme)
	m.viper.SetDefault("favicon.direct_paths", d.Favicon.DirectPaths)
	m.viper.SetDefault("favicon.tier_timeout", d.Favicon.TierTimeout.String())
	m.viper.SetDefault("favicon.max_dimension", d.Favicon.MaxDimension)
	m.viper.SetDefault("favicon.dedupe_inflight", d.Favicon.DedupeInflight)
	m.viper.SetDefault("favicon.job_concurrency", d.Favicon.JobConcurrency)

	m.viper.SetDefault("valkey.address", d.Valkey.Address)
	m.viper.SetDefault("valkey.username", d.Valkey.Username)
	m.viper.SetDefault("valkey.password", d.Valkey.Password)
	m.viper.SetDefault("valkey.db", d.Valkey.DB)
	m.viper.SetDefault("valkey.key_prefix", d.Valkey.KeyPrefix)

	m.viper.SetDefault("server.listen", d.Server.Listen)
	m.viper.SetDefault("server.metrics", d.Server.Metrics)
}

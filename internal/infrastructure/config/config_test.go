package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/infrastructure/favicon"
)

// isolateXDG points every XDG directory at a fresh temp dir.
func isolateXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	return root
}

func writeConfigFile(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, "config", appName)
	require.NoError(t, os.MkdirAll(dir, dirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
}

func TestDefaultConfig_FaviconBudget(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 720*time.Hour, cfg.Favicon.CacheTTL)
	assert.Equal(t, time.Hour, cfg.Favicon.FailureCooldown)
	assert.Equal(t, 15360, cfg.Favicon.MaxEntryBytes)
	assert.Equal(t, 2*1024*1024, cfg.Favicon.MaxTotalBytes)
	assert.Equal(t, StoreSQLite, cfg.Favicon.Store)
	assert.Len(t, cfg.Favicon.DirectPaths, 6)
}

func TestDefaultConfig_TracksEngineDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, favicon.DefaultCacheTTL, cfg.Favicon.CacheTTL)
	assert.Equal(t, favicon.DefaultMaxEntryBytes, cfg.Favicon.MaxEntryBytes)
	assert.Equal(t, favicon.DefaultIconServiceURL, cfg.Favicon.IconServiceURL)
	assert.Equal(t, favicon.DefaultTierTimeout, cfg.Favicon.TierTimeout)
	assert.Equal(t, favicon.DefaultDirectPaths, cfg.Favicon.DirectPaths)

	cfg.Favicon.DirectPaths[0] = "/mutated.ico"
	assert.Equal(t, "/favicon.ico", favicon.DefaultDirectPaths[0])
}

func TestSetDefaults(t *testing.T) {
	mgr := &Manager{viper: viper.New()}
	mgr.setDefaults()

	assert.Equal(t, "sqlite", mgr.viper.GetString("favicon.store"))
	assert.Equal(t, 720*time.Hour, mgr.viper.GetDuration("favicon.cache_ttl"))
	assert.Equal(t, 5*time.Second, mgr.viper.GetDuration("favicon.tier_timeout"))
	assert.True(t, mgr.viper.GetBool("favicon.dedupe_inflight"))
	assert.Equal(t, "info", mgr.viper.GetString("logging.level"))
}

func TestManager_LoadCreatesDefaultFile(t *testing.T) {
	root := isolateXDG(t)

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	assert.FileExists(t, filepath.Join(root, "config", appName, "config.toml"))

	cfg := mgr.Get()
	assert.Equal(t, filepath.Join(root, "data", appName, databaseName), cfg.Database.Path)
	assert.Equal(t, filepath.Join(root, "state", appName, "favicons"), cfg.Favicon.StoreDir)
	assert.Equal(t, 720*time.Hour, cfg.Favicon.CacheTTL)
	assert.Equal(t, DefaultConfig().Favicon.DirectPaths, cfg.Favicon.DirectPaths)
}

func TestManager_LoadReadsFileAndEnv(t *testing.T) {
	root := isolateXDG(t)
	writeConfigFile(t, root, `
[favicon]
store = "Memory"
cache_ttl = "1h"
proxy_url = "https://proxy.local/fetch"

[logging]
level = "debug"
`)
	t.Setenv("SHELF_FAVICON_MAX_TOTAL_BYTES", "4194304")
	t.Setenv("SHELF_LOG_FORMAT", "json")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.Get()
	assert.Equal(t, StoreMemory, cfg.Favicon.Store)
	assert.Equal(t, time.Hour, cfg.Favicon.CacheTTL)
	assert.Equal(t, "https://proxy.local/fetch", cfg.Favicon.ProxyURL)
	assert.Equal(t, 4194304, cfg.Favicon.MaxTotalBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.Hour, cfg.Favicon.FailureCooldown)
}

func TestManager_LoadRejectsInvalidValues(t *testing.T) {
	root := isolateXDG(t)
	writeConfigFile(t, root, `
[favicon]
store = "floppy"
`)

	mgr, err := NewManager()
	require.NoError(t, err)

	err = mgr.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "favicon.store")
}

func TestManager_LoadRejectsBrokenTOML(t *testing.T) {
	root := isolateXDG(t)
	writeConfigFile(t, root, "[favicon\nstore = ")

	mgr, err := NewManager()
	require.NoError(t, err)
	assert.Error(t, mgr.Load())
}

func TestManager_ReloadNotifiesCallbacks(t *testing.T) {
	root := isolateXDG(t)
	writeConfigFile(t, root, "[favicon]\nstore = \"memory\"\n")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	var got *Config
	mgr.OnConfigChange(func(c *Config) { got = c })

	writeConfigFile(t, root, "[favicon]\nstore = \"file\"\n")
	mgr.mu.Lock()
	require.NoError(t, mgr.reload())
	mgr.notifyCallbacksLocked()

	require.NotNil(t, got)
	assert.Equal(t, StoreFile, got.Favicon.Store)
	assert.Equal(t, StoreFile, mgr.Get().Favicon.Store)
}

func TestManager_ReloadKeepsPreviousOnInvalidEdit(t *testing.T) {
	root := isolateXDG(t)
	writeConfigFile(t, root, "[favicon]\nstore = \"memory\"\n")

	mgr, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	writeConfigFile(t, root, "[favicon]\nmax_entry_bytes = -1\n")
	mgr.mu.Lock()
	err = mgr.reload()
	mgr.mu.Unlock()

	require.Error(t, err)
	assert.Equal(t, StoreMemory, mgr.Get().Favicon.Store)
}

func TestGetXDGDirs_DevMode(t *testing.T) {
	t.Setenv("ENV", "dev")
	cwd, err := os.Getwd()
	require.NoError(t, err)

	dirs, err := GetXDGDirs()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, ".dev", appName), dirs.ConfigHome)
	assert.Equal(t, dirs.ConfigHome, dirs.DataHome)
}

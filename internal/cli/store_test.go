package cli_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/cli"
	"github.com/bnema/shelf/internal/infrastructure/config"
	"github.com/bnema/shelf/internal/infrastructure/persistence/sqlite"
)

func testConfig(t *testing.T, store config.StoreKind) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "shelf.sqlite")
	cfg.Favicon.Store = store
	cfg.Favicon.StoreDir = filepath.Join(dir, "favicons")
	cfg.Logging.Level = "disabled"
	return cfg
}

func roundTrip(t *testing.T, backend port.KeyValueBackend) {
	t.Helper()
	ctx := context.Background()

	_, err := backend.Get(ctx, "favicon_cache")
	require.True(t, errors.Is(err, port.ErrKeyNotFound))

	require.NoError(t, backend.Set(ctx, "favicon_cache", []byte(`{}`)))
	got, err := backend.Get(ctx, "favicon_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got))
}

func TestOpenFaviconBackend_Kinds(t *testing.T) {
	for _, kind := range []config.StoreKind{config.StoreMemory, config.StoreFile, config.StoreSQLite} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := testConfig(t, kind)
			db := sqlite.NewLazyDB(cfg.Database.Path)
			t.Cleanup(func() { _ = db.Close() })

			backend, closeFn, err := cli.OpenFaviconBackend(context.Background(), cfg, db)
			require.NoError(t, err)
			t.Cleanup(closeFn)

			roundTrip(t, backend)
			assert.Equal(t, kind == config.StoreSQLite, db.IsInitialized())
		})
	}
}

func TestOpenFaviconBackend_Valkey(t *testing.T) {
	server := miniredis.RunT(t)
	cfg := testConfig(t, config.StoreValkey)
	cfg.Valkey.Address = server.Addr()

	backend, closeFn, err := cli.OpenFaviconBackend(context.Background(), cfg, sqlite.NewLazyDB(cfg.Database.Path))
	require.NoError(t, err)
	t.Cleanup(closeFn)

	roundTrip(t, backend)
	assert.True(t, server.Exists("shelf:favicon_cache"))
}

func TestOpenFaviconBackend_UnknownKind(t *testing.T) {
	cfg := testConfig(t, "floppy")

	_, closeFn, err := cli.OpenFaviconBackend(context.Background(), cfg, sqlite.NewLazyDB(cfg.Database.Path))
	require.Error(t, err)
	require.NotNil(t, closeFn)
}

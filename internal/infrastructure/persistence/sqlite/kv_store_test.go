package sqlite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/infrastructure/persistence/sqlite"
)

func TestKVBackend_SetGetDelete(t *testing.T) {
	ctx := testCtx()
	kv := sqlite.NewKVBackend(openTestDB(t))

	_, err := kv.Get(ctx, "favicon_cache")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "favicon_cache", []byte(`{"a":1}`)))
	require.NoError(t, kv.Set(ctx, "favicon_cache", []byte(`{"a":2}`)))

	got, err := kv.Get(ctx, "favicon_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got))

	require.NoError(t, kv.Delete(ctx, "favicon_cache"))
	_, err = kv.Get(ctx, "favicon_cache")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}

func TestKVBackend_BacksBlobStore(t *testing.T) {
	ctx := testCtx()
	store := kvstore.NewBlobStore(sqlite.NewKVBackend(openTestDB(t)), 0)

	require.True(t, store.Write(ctx, "failed_favicon_domains", map[string]int64{"github.com": 1700000000000}))

	out := map[string]int64{}
	require.True(t, store.Read(ctx, "failed_favicon_domains", &out))
	assert.Equal(t, int64(1700000000000), out["github.com"])
}

func TestMigrationVersion(t *testing.T) {
	ctx := testCtx()
	db := openTestDB(t)

	version, err := sqlite.MigrationVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Running again is a no-op.
	require.NoError(t, sqlite.RunMigrations(ctx, db))
}

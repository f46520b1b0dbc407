package kvstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
)

func TestFileBackend_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	backend := kvstore.NewFileBackend(fsys, "/data/favicons")

	_, err := backend.Get(ctx, "favicon_cache")
	assert.True(t, errors.Is(err, port.ErrKeyNotFound))

	require.NoError(t, backend.Set(ctx, "favicon_cache", []byte(`{"a":1}`)))

	got, err := backend.Get(ctx, "favicon_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	exists, err := afero.Exists(fsys, "/data/favicons/favicon_cache.json")
	require.NoError(t, err)
	assert.True(t, exists)

	tmpExists, err := afero.Exists(fsys, "/data/favicons/favicon_cache.json.tmp")
	require.NoError(t, err)
	assert.False(t, tmpExists)

	require.NoError(t, backend.Delete(ctx, "favicon_cache"))
	require.NoError(t, backend.Delete(ctx, "favicon_cache"))

	_, err = backend.Get(ctx, "favicon_cache")
	assert.True(t, errors.Is(err, port.ErrKeyNotFound))
}

func TestFileBackend_KeysAreSanitized(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	backend := kvstore.NewFileBackend(fsys, "/store")

	require.NoError(t, backend.Set(ctx, "../escape", []byte("1")))

	exists, err := afero.Exists(fsys, "/store/__escape.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileBackend_ReadOnlyFsFailsWrites(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewFileBackend(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/store")

	require.Error(t, backend.Set(ctx, "k", []byte("1")))

	store := kvstore.NewBlobStore(backend, 0)
	assert.False(t, store.Write(ctx, "k", 1))
}

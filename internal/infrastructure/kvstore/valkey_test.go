package kvstore_test

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
)

func TestValkeyBackend_SetGetDelete(t *testing.T) {
	server := miniredis.RunT(t)

	backend, err := kvstore.NewValkeyBackend(kvstore.ValkeyConfig{Address: server.Addr(), KeyPrefix: "shelf:"})
	require.NoError(t, err)
	t.Cleanup(backend.Close)

	ctx := context.Background()

	_, err = backend.Get(ctx, "favicon_cache")
	assert.True(t, errors.Is(err, port.ErrKeyNotFound))

	require.NoError(t, backend.Set(ctx, "favicon_cache", []byte(`{"github.com":1}`)))

	raw, err := server.Get("shelf:favicon_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `{"github.com":1}`, raw)

	got, err := backend.Get(ctx, "favicon_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `{"github.com":1}`, string(got))

	require.NoError(t, backend.Delete(ctx, "favicon_cache"))
	assert.False(t, server.Exists("shelf:favicon_cache"))
}

func TestValkeyBackend_RequiresAddress(t *testing.T) {
	_, err := kvstore.NewValkeyBackend(kvstore.ValkeyConfig{})
	require.Error(t, err)
}

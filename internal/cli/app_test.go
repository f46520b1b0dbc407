package cli_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/shelf/internal/cli"
	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/infrastructure/config"
)

func newTestApp(t *testing.T, cfg *config.Config) *cli.App {
	t.Helper()
	app, err := cli.NewAppFromConfig(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewAppFromConfig_MemoryStoreDefersDatabase(t *testing.T) {
	app := newTestApp(t, testConfig(t, config.StoreMemory))

	stats := app.Favicons.Stats(app.Ctx())
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, app.Config.Favicon.MaxTotalBytes, stats.MaxBytes)
}

func TestApp_MigrateRunsAgainstSQLite(t *testing.T) {
	app := newTestApp(t, testConfig(t, config.StoreSQLite))

	bookmarks, err := app.Bookmarks()
	require.NoError(t, err)
	inline := entity.NewBookmark("a", "https://shelf.dev", "Shelf", "")
	inline.Favicon = "data:image/png;base64,AAAA"
	require.NoError(t, bookmarks.Save(app.Ctx(), inline))

	uc, err := app.MigrateUseCase()
	require.NoError(t, err)

	report, err := uc.Execute(app.Ctx())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 1, report.Skipped)
}

func TestApp_HandlerServesHealthAndMetrics(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	app := newTestApp(t, cfg)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApp_HandlerHidesMetricsWhenDisabled(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	cfg.Server.Metrics = false
	app := newTestApp(t, cfg)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

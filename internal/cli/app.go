// Package cli wires the shelf application for the command line.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bnema/shelf/internal/application/usecase"
	"github.com/bnema/shelf/internal/cli/styles"
	"github.com/bnema/shelf/internal/domain/build"
	"github.com/bnema/shelf/internal/domain/repository"
	"github.com/bnema/shelf/internal/infrastructure/config"
	"github.com/bnema/shelf/internal/infrastructure/favicon"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/shelf/internal/logging"
	"github.com/bnema/shelf/internal/metrics"
	"github.com/bnema/shelf/internal/server"
)

// App holds CLI dependencies.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo build.Info

	Favicons *favicon.Service
	Metrics  *metrics.Recorder

	manager      *config.Manager
	db           *sqlite.LazyDB
	closeBackend func()

	reposOnce  sync.Once
	bookmarks  repository.BookmarkRepository
	categories repository.CategoryRepository
	reposErr   error

	ctx context.Context
}

// NewApp loads the configuration and builds the favicon engine.
func NewApp() (*App, error) {
	mgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewAppFromConfig(mgr.Get(), mgr)
}

// NewAppFromConfig builds the application from an already loaded config.
// mgr may be nil when live reload is not needed.
func NewAppFromConfig(cfg *config.Config, mgr *config.Manager) (*App, error) {
	// The instance logs everything; the global level does the filtering so
	// that a config reload can change verbosity.
	logger := logging.NewFromConfigValues("trace", cfg.Logging.Format)
	zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
	ctx := logging.WithContext(context.Background(), logger)

	db := sqlite.NewLazyDB(cfg.Database.Path)
	backend, closeBackend, err := OpenFaviconBackend(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	store := kvstore.NewBlobStore(backend, cfg.Favicon.StoreQuotaBytes)
	service := favicon.NewService(store, favicon.Options{
		CacheTTL:        cfg.Favicon.CacheTTL,
		FailureCooldown: cfg.Favicon.FailureCooldown,
		MaxEntryBytes:   cfg.Favicon.MaxEntryBytes,
		MaxTotalBytes:   cfg.Favicon.MaxTotalBytes,
		ProxyURL:        cfg.Favicon.ProxyURL,
		IconServiceURL:  cfg.Favicon.IconServiceURL,
		DirectScheme:    cfg.Favicon.DirectScheme,
		DirectPaths:     cfg.Favicon.DirectPaths,
		TierTimeout:     cfg.Favicon.TierTimeout,
		MaxDimension:    cfg.Favicon.MaxDimension,
		DedupeInflight:  cfg.Favicon.DedupeInflight,
		Metrics:         recorder,
	})

	logger.Debug().
		Str("store", string(cfg.Favicon.Store)).
		Str("db_path", cfg.Database.Path).
		Msg("favicon engine ready")

	return &App{
		Config:       cfg,
		Theme:        styles.NewTheme(),
		Favicons:     service,
		Metrics:      recorder,
		manager:      mgr,
		db:           db,
		closeBackend: closeBackend,
		ctx:          ctx,
	}, nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Bookmarks returns the bookmark repository, opening the database on first use.
func (a *App) Bookmarks() (repository.BookmarkRepository, error) {
	a.openRepos()
	return a.bookmarks, a.reposErr
}

// Categories returns the category repository, opening the database on first use.
func (a *App) Categories() (repository.CategoryRepository, error) {
	a.openRepos()
	return a.categories, a.reposErr
}

func (a *App) openRepos() {
	a.reposOnce.Do(func() {
		db, err := a.db.DB(a.ctx)
		if err != nil {
			a.reposErr = fmt.Errorf("open bookmark store: %w", err)
			return
		}
		a.bookmarks = sqlite.NewBookmarkRepository(db)
		a.categories = sqlite.NewCategoryRepository(db)
	})
}

// MigrateUseCase builds the legacy favicon migration job.
func (a *App) MigrateUseCase() (*usecase.MigrateFaviconsUseCase, error) {
	bookmarks, err := a.Bookmarks()
	if err != nil {
		return nil, err
	}
	return usecase.NewMigrateFaviconsUseCase(bookmarks, a.Favicons, a.Config.Favicon.JobConcurrency), nil
}

// RefreshCategoryUseCase builds the per-category favicon refresh job.
func (a *App) RefreshCategoryUseCase() (*usecase.RefreshCategoryFaviconsUseCase, error) {
	bookmarks, err := a.Bookmarks()
	if err != nil {
		return nil, err
	}
	return usecase.NewRefreshCategoryFaviconsUseCase(bookmarks, a.Favicons, a.Config.Favicon.JobConcurrency), nil
}

// Handler builds the HTTP surface. Job endpoints answer 503 when the
// bookmark database cannot be opened.
func (a *App) Handler() http.Handler {
	deps := server.Deps{Favicons: a.Favicons}

	if migrate, err := a.MigrateUseCase(); err == nil {
		deps.Migrate = migrate
	} else {
		logging.FromContext(a.ctx).Warn().Err(err).Msg("bookmark jobs disabled")
	}
	if refresh, err := a.RefreshCategoryUseCase(); err == nil {
		deps.Refresh = refresh
	}
	if a.Config.Server.Metrics {
		deps.Metrics = a.Metrics.Handler()
	}

	return server.NewHandler(a.ctx, deps)
}

// WatchConfig reloads the config file on change. Only the log level is
// applied live; other settings need a restart.
func (a *App) WatchConfig() error {
	if a.manager == nil {
		return nil
	}
	a.manager.OnConfigChange(func(cfg *config.Config) {
		zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
		logging.FromContext(a.ctx).Info().Str("level", cfg.Logging.Level).Msg("config reloaded")
	})
	return a.manager.Watch()
}

// Close releases all resources.
func (a *App) Close() error {
	if a.closeBackend != nil {
		a.closeBackend()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

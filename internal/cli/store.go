package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/infrastructure/config"
	"github.com/bnema/shelf/internal/infrastructure/kvstore"
	"github.com/bnema/shelf/internal/infrastructure/persistence/sqlite"
)

// OpenFaviconBackend opens the key/value medium selected by favicon.store.
// The returned closer is never nil.
func OpenFaviconBackend(ctx context.Context, cfg *config.Config, db *sqlite.LazyDB) (port.KeyValueBackend, func(), error) {
	noop := func() {}

	switch cfg.Favicon.Store {
	case config.StoreMemory:
		return kvstore.NewMemoryBackend(), noop, nil

	case config.StoreFile:
		return kvstore.NewFileBackend(afero.NewOsFs(), cfg.Favicon.StoreDir), noop, nil

	case config.StoreValkey:
		backend, err := kvstore.NewValkeyBackend(kvstore.ValkeyConfig{
			Address:   cfg.Valkey.Address,
			Username:  cfg.Valkey.Username,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return backend, backend.Close, nil

	case config.StoreSQLite, "":
		conn, err := db.DB(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("open favicon store: %w", err)
		}
		return sqlite.NewKVBackend(conn), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown favicon store %q", cfg.Favicon.Store)
	}
}

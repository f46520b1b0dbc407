package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bnema/shelf/internal/logging"
)

// LazyDB opens the database on first use so CLI commands that only touch
// the favicon cache through another backend never pay for it.
type LazyDB struct {
	dbPath string
	db     *sql.DB
	err    error
	closed bool
	once   sync.Once
	mu     sync.RWMutex
}

// NewLazyDB creates a lazy database handle. Nothing is opened yet.
func NewLazyDB(dbPath string) *LazyDB {
	return &LazyDB{dbPath: dbPath}
}

// DB returns the connection, opening it on the first call. After Close it
// returns sql.ErrConnDone.
func (l *LazyDB) DB(ctx context.Context) (*sql.DB, error) {
	l.once.Do(func() {
		l.mu.RLock()
		closed := l.closed
		l.mu.RUnlock()
		if closed {
			return
		}

		log := logging.FromContext(ctx)
		log.Debug().Str("path", l.dbPath).Msg("opening database")

		db, err := NewConnection(ctx, l.dbPath)

		l.mu.Lock()
		l.db, l.err = db, err
		l.mu.Unlock()
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.err != nil {
		return nil, fmt.Errorf("database initialization failed: %w", l.err)
	}
	if l.db == nil {
		return nil, fmt.Errorf("database closed: %w", sql.ErrConnDone)
	}
	return l.db, nil
}

// Close closes the connection if it was ever opened.
func (l *LazyDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// IsInitialized reports whether the connection has been opened.
func (l *LazyDB) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db != nil
}

// Path returns the database path.
func (l *LazyDB) Path() string {
	return l.dbPath
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/domain/repository"
	"github.com/bnema/shelf/internal/logging"
)

const bookmarkColumns = `id, name, url, description, favicon, category_id, position,
	is_blacklisted, custom_favicon, created_at, updated_at`

type bookmarkRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookmarkRepository creates a new SQLite-backed bookmark repository.
func NewBookmarkRepository(db *sql.DB) repository.BookmarkRepository {
	return &bookmarkRepo{db: db, now: time.Now}
}

func (r *bookmarkRepo) Save(ctx context.Context, b *entity.Bookmark) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("id", string(b.ID)).Str("url", b.URL).Msg("saving bookmark")

	now := r.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookmarks (`+bookmarkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			description = excluded.description,
			favicon = excluded.favicon,
			category_id = excluded.category_id,
			position = excluded.position,
			is_blacklisted = excluded.is_blacklisted,
			custom_favicon = excluded.custom_favicon,
			updated_at = excluded.updated_at`,
		string(b.ID), b.Name, b.URL, b.Description, b.Favicon, string(b.CategoryID), b.Order,
		b.IsBlacklisted, b.CustomFavicon, b.CreatedAt.UnixMilli(), b.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save bookmark %s: %w", b.ID, err)
	}
	return nil
}

func (r *bookmarkRepo) FindByID(ctx context.Context, id entity.BookmarkID) (*entity.Bookmark, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, string(id))
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark %s: %w", id, err)
	}
	return b, nil
}

func (r *bookmarkRepo) GetAll(ctx context.Context) ([]*entity.Bookmark, error) {
	return r.query(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY category_id, position, id`)
}

func (r *bookmarkRepo) GetByCategory(ctx context.Context, categoryID entity.CategoryID) ([]*entity.Bookmark, error) {
	return r.query(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE category_id = ? ORDER BY position, id`,
		string(categoryID))
}

// UpdateMany applies each update in its own statement; one failing item does
// not undo the others.
func (r *bookmarkRepo) UpdateMany(ctx context.Context, updates []entity.BookmarkUpdate) error {
	log := logging.FromContext(ctx)
	now := r.now().UnixMilli()

	var errs []error
	applied := 0
	for _, u := range updates {
		if u.Favicon == nil {
			continue
		}
		res, err := r.db.ExecContext(ctx,
			`UPDATE bookmarks SET favicon = ?, updated_at = ? WHERE id = ?`,
			*u.Favicon, now, string(u.ID))
		if err != nil {
			errs = append(errs, fmt.Errorf("bookmark %s: %w", u.ID, err))
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			errs = append(errs, fmt.Errorf("bookmark %s: %w", u.ID, repository.ErrNotFound))
			continue
		}
		applied++
	}

	log.Debug().Int("applied", applied).Int("failed", len(errs)).Msg("bookmark batch update")
	return errors.Join(errs...)
}

func (r *bookmarkRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(s rowScanner) (*entity.Bookmark, error) {
	var (
		b                entity.Bookmark
		id, categoryID   string
		created, updated int64
	)
	if err := s.Scan(&id, &b.Name, &b.URL, &b.Description, &b.Favicon, &categoryID, &b.Order,
		&b.IsBlacklisted, &b.CustomFavicon, &created, &updated); err != nil {
		return nil, err
	}
	b.ID = entity.BookmarkID(id)
	b.CategoryID = entity.CategoryID(categoryID)
	b.CreatedAt = time.UnixMilli(created)
	b.UpdatedAt = time.UnixMilli(updated)
	return &b, nil
}

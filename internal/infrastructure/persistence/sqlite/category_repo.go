package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/domain/repository"
)

type categoryRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCategoryRepository creates a new SQLite-backed category repository.
func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepo{db: db, now: time.Now}
}

func (r *categoryRepo) Save(ctx context.Context, c *entity.Category) error {
	now := r.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, position, is_hidden, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			position = excluded.position,
			is_hidden = excluded.is_hidden,
			updated_at = excluded.updated_at`,
		string(c.ID), c.Name, c.Color, c.Order, c.IsHidden, c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save category %s: %w", c.ID, err)
	}
	return nil
}

func (r *categoryRepo) FindByID(ctx context.Context, id entity.CategoryID) (*entity.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, color, position, is_hidden, created_at, updated_at FROM categories WHERE id = ?`,
		string(id))
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", id, err)
	}
	return c, nil
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, position, is_hidden, created_at, updated_at FROM categories ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(s rowScanner) (*entity.Category, error) {
	var (
		c                entity.Category
		id               string
		created, updated int64
	)
	if err := s.Scan(&id, &c.Name, &c.Color, &c.Order, &c.IsHidden, &created, &updated); err != nil {
		return nil, err
	}
	c.ID = entity.CategoryID(id)
	c.CreatedAt = time.UnixMilli(created)
	c.UpdatedAt = time.UnixMilli(updated)
	return &c, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/bnema/shelf/internal/domain/entity"
)

// ErrNotFound is returned by batch updates targeting a missing record.
var ErrNotFound = errors.New("record not found")

// BookmarkRepository defines the slice of bookmark persistence the favicon
// jobs depend on.
type BookmarkRepository interface {
	// Save creates or updates a bookmark.
	Save(ctx context.Context, bookmark *entity.Bookmark) error

	// FindByID retrieves a bookmark by its ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id entity.BookmarkID) (*entity.Bookmark, error)

	// GetAll retrieves all bookmarks ordered by category and position.
	GetAll(ctx context.Context) ([]*entity.Bookmark, error)

	// GetByCategory retrieves bookmarks of one category ordered by position.
	GetByCategory(ctx context.Context, categoryID entity.CategoryID) ([]*entity.Bookmark, error)

	// UpdateMany applies each update independently. A failing item does not
	// roll back the others; the returned error joins every item failure.
	UpdateMany(ctx context.Context, updates []entity.BookmarkUpdate) error
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	// Save creates or updates a category.
	Save(ctx context.Context, category *entity.Category) error

	// FindByID retrieves a category by its ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id entity.CategoryID) (*entity.Category, error)

	// GetAll retrieves all categories ordered by position.
	GetAll(ctx context.Context) ([]*entity.Category, error)
}

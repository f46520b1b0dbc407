package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/domain/repository"
	"github.com/bnema/shelf/internal/logging"
)

// RefreshCategoryFaviconsUseCase force-refreshes the icons of a category,
// bypassing the favicon cache and the failure cooldown.
type RefreshCategoryFaviconsUseCase struct {
	bookmarks   repository.BookmarkRepository
	resolver    port.FaviconResolver
	concurrency int
}

// NewRefreshCategoryFaviconsUseCase creates a new category refresh use case.
func NewRefreshCategoryFaviconsUseCase(
	bookmarks repository.BookmarkRepository,
	resolver port.FaviconResolver,
	concurrency int,
) *RefreshCategoryFaviconsUseCase {
	return &RefreshCategoryFaviconsUseCase{
		bookmarks:   bookmarks,
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// Execute refreshes every bookmark of the category.
func (uc *RefreshCategoryFaviconsUseCase) Execute(ctx context.Context, categoryID entity.CategoryID) (*FaviconJobReport, error) {
	bookmarks, err := uc.bookmarks.GetByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks of category %s: %w", categoryID, err)
	}
	return uc.Refresh(ctx, bookmarks)
}

// Refresh runs a forced resolution for each bookmark concurrently and applies
// all outcomes in one batch. A failing item degrades to no icon without
// blocking its siblings. Blacklisted bookmarks are skipped.
func (uc *RefreshCategoryFaviconsUseCase) Refresh(ctx context.Context, bookmarks []*entity.Bookmark) (*FaviconJobReport, error) {
	report := &FaviconJobReport{}

	targets := make([]*entity.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b == nil || b.IsBlacklisted {
			report.Skipped++
			continue
		}
		targets = append(targets, b)
	}
	report.Total = len(targets)
	if len(targets) == 0 {
		return report, nil
	}

	outcomes := resolveAll(ctx, targets, uc.concurrency, func(ctx context.Context, b *entity.Bookmark) entity.IconResult {
		return uc.resolver.ForceRefresh(ctx, b.URL)
	})

	updates := make([]entity.BookmarkUpdate, len(targets))
	for i, out := range outcomes {
		switch {
		case out.err != nil:
			report.Failed++
		case out.result.OK():
			report.Resolved++
		default:
			report.Cleared++
		}
		updates[i] = entity.FaviconUpdate(targets[i].ID, out.result.Data)
	}

	if err := uc.bookmarks.UpdateMany(ctx, updates); err != nil {
		return report, fmt.Errorf("failed to update bookmarks: %w", err)
	}

	logging.FromContext(ctx).Info().
		Int("total", report.Total).
		Int("resolved", report.Resolved).
		Int("failed", report.Failed).
		Msg("category favicons refreshed")
	return report, nil
}

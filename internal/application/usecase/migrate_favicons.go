package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/domain/repository"
	"github.com/bnema/shelf/internal/domain/url"
	"github.com/bnema/shelf/internal/logging"
)

// MigrateFaviconsUseCase converts legacy external icon URLs stored on
// bookmarks into inline icons backed by the favicon cache.
type MigrateFaviconsUseCase struct {
	bookmarks   repository.BookmarkRepository
	resolver    port.FaviconResolver
	concurrency int
}

// NewMigrateFaviconsUseCase creates a new migration use case.
func NewMigrateFaviconsUseCase(
	bookmarks repository.BookmarkRepository,
	resolver port.FaviconResolver,
	concurrency int,
) *MigrateFaviconsUseCase {
	return &MigrateFaviconsUseCase{
		bookmarks:   bookmarks,
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// Execute resolves every bookmark whose icon is a legacy URL and rewrites it
// with the result, or clears it when nothing could be resolved. Placeholder
// references are cleared without a lookup. Items that fail are left
// untouched. Only a failure to read or write the bookmark store is returned.
func (uc *MigrateFaviconsUseCase) Execute(ctx context.Context) (*FaviconJobReport, error) {
	log := logging.FromContext(ctx)

	all, err := uc.bookmarks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	report := &FaviconJobReport{}
	var legacy []*entity.Bookmark
	var updates []entity.BookmarkUpdate
	for _, b := range all {
		switch {
		case b == nil:
		case url.IsLegacyIconReference(b.Favicon):
			legacy = append(legacy, b)
		case url.IsPlaceholderIcon(b.Favicon):
			updates = append(updates, entity.FaviconUpdate(b.ID, ""))
		}
	}
	report.Cleared = len(updates)
	report.Total = len(legacy) + len(updates)
	report.Skipped = len(all) - report.Total

	if report.Total == 0 {
		log.Debug().Int("bookmarks", len(all)).Msg("no legacy favicons to migrate")
		return report, nil
	}

	outcomes := resolveAll(ctx, legacy, uc.concurrency, func(ctx context.Context, b *entity.Bookmark) entity.IconResult {
		return uc.resolver.Resolve(ctx, b.URL)
	})

	for i, out := range outcomes {
		switch {
		case out.err != nil:
			report.Failed++
			continue
		case out.result.OK():
			report.Resolved++
		default:
			report.Cleared++
		}
		updates = append(updates, entity.FaviconUpdate(legacy[i].ID, out.result.Data))
	}

	if len(updates) > 0 {
		if err := uc.bookmarks.UpdateMany(ctx, updates); err != nil {
			return report, fmt.Errorf("failed to update bookmarks: %w", err)
		}
	}

	log.Info().
		Int("total", report.Total).
		Int("resolved", report.Resolved).
		Int("cleared", report.Cleared).
		Int("failed", report.Failed).
		Msg("legacy favicon migration finished")
	return report, nil
}

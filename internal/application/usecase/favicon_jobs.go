package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/logging"
)

// DefaultJobConcurrency bounds how many resolutions a bulk job runs at once.
const DefaultJobConcurrency = 8

// FaviconJobReport summarizes a bulk favicon job.
type FaviconJobReport struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Cleared  int `json:"cleared"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

type itemOutcome struct {
	result entity.IconResult
	err    error
}

// resolveAll runs resolve for every bookmark with at most limit in flight.
// Outcomes are returned in input order. A panicking item yields an error
// outcome and never affects its siblings.
func resolveAll(
	ctx context.Context,
	bookmarks []*entity.Bookmark,
	limit int,
	resolve func(context.Context, *entity.Bookmark) entity.IconResult,
) []itemOutcome {
	if limit <= 0 {
		limit = DefaultJobConcurrency
	}

	outcomes := make([]itemOutcome, len(bookmarks))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, b := range bookmarks {
		g.Go(func() error {
			outcomes[i] = resolveOne(ctx, b, resolve)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func resolveOne(
	ctx context.Context,
	b *entity.Bookmark,
	resolve func(context.Context, *entity.Bookmark) entity.IconResult,
) (out itemOutcome) {
	ctx = logging.WithBookmarkID(ctx, string(b.ID))
	defer func() {
		if r := recover(); r != nil {
			out = itemOutcome{result: entity.Absent(), err: fmt.Errorf("bookmark %s: %v", b.ID, r)}
			logging.FromContext(ctx).Warn().Interface("panic", r).Msg("favicon job item failed")
		}
	}()
	return itemOutcome{result: resolve(ctx, b)}
}

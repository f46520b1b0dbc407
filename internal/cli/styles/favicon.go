package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/shelf/internal/application/usecase"
	"github.com/bnema/shelf/internal/domain/entity"
)

// previewLen caps how much of a data URI is echoed to the terminal.
const previewLen = 48

// FaviconRenderer renders favicon command output.
type FaviconRenderer struct {
	theme *Theme
}

// NewFaviconRenderer creates a new favicon renderer with the given theme.
func NewFaviconRenderer(theme *Theme) *FaviconRenderer {
	return &FaviconRenderer{theme: theme}
}

// RenderResult renders the outcome of a resolve or refresh.
func (r *FaviconRenderer) RenderResult(target string, res entity.IconResult) string {
	if !res.OK() {
		return fmt.Sprintf("%s %s %s",
			r.theme.WarningStyle.Render(IconWarning),
			r.theme.Title.Render(target),
			r.theme.Subtle.Render("no icon, placeholder shown"),
		)
	}

	return fmt.Sprintf("%s %s %s\n  %s",
		r.theme.SuccessStyle.Render(IconImage),
		r.theme.Title.Render(target),
		r.theme.Badge.Render(string(res.Source)),
		r.theme.Subtle.Render(preview(res.Data)),
	)
}

// RenderStats renders a cache snapshot in a box.
func (r *FaviconRenderer) RenderStats(stats entity.CacheStats) string {
	keyStyle := r.theme.Subtle
	valStyle := r.theme.Highlight
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)

	usage := 0.0
	if stats.MaxBytes > 0 {
		usage = float64(stats.TotalBytes) / float64(stats.MaxBytes) * 100
	}

	lines := []string{
		r.theme.BoxHeader.Render("Favicon cache"),
		fmt.Sprintf("%s %s %s", iconStyle.Render(IconCache), keyStyle.Render("Entries"), valStyle.Render(fmt.Sprint(stats.Count))),
		fmt.Sprintf("%s %s %s / %s (%.1f%%)",
			iconStyle.Render(IconDatabase),
			keyStyle.Render("Size"),
			valStyle.Render(FormatBytes(stats.TotalBytes)),
			FormatBytes(stats.MaxBytes),
			usage,
		),
		fmt.Sprintf("%s %s %s", iconStyle.Render(IconWarning), keyStyle.Render("Failed domains"), valStyle.Render(fmt.Sprint(stats.FailedCount))),
	}

	return r.theme.Box.Render(strings.Join(lines, "\n"))
}

// RenderJobReport renders the counters of a bulk favicon job.
func (r *FaviconRenderer) RenderJobReport(title string, report *usecase.FaviconJobReport) string {
	if report == nil {
		return r.RenderError(fmt.Errorf("%s produced no report", title))
	}

	return fmt.Sprintf("%s %s  %s %s %s %s %s",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Title.Render(title),
		r.theme.Badge.Render(fmt.Sprintf("%d resolved", report.Resolved)),
		r.theme.BadgeMuted.Render(fmt.Sprintf("%d cleared", report.Cleared)),
		r.theme.BadgeMuted.Render(fmt.Sprintf("%d skipped", report.Skipped)),
		r.theme.BadgeMuted.Render(fmt.Sprintf("%d failed", report.Failed)),
		r.theme.Subtle.Render(fmt.Sprintf("of %d", report.Total)),
	)
}

// RenderCleared confirms a failure registry reset.
func (r *FaviconRenderer) RenderCleared() string {
	return fmt.Sprintf("%s %s", r.theme.SuccessStyle.Render(IconTrash), "Failure registry cleared")
}

// RenderBookmark confirms a saved bookmark.
func (r *FaviconRenderer) RenderBookmark(b *entity.Bookmark) string {
	return fmt.Sprintf("%s %s %s",
		r.theme.SuccessStyle.Render(IconBookmark),
		r.theme.Title.Render(b.Name),
		r.theme.Subtle.Render(string(b.ID)),
	)
}

// RenderError renders a user facing error line.
func (r *FaviconRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}

func preview(data string) string {
	if len(data) <= previewLen {
		return data
	}
	return data[:previewLen] + "…"
}

// FormatBytes renders a byte count in KiB or MiB.
func FormatBytes(n int) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case n >= mib:
		return fmt.Sprintf("%.1f MiB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.1f KiB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

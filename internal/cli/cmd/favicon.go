package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/shelf/internal/cli/styles"
	"github.com/bnema/shelf/internal/domain/entity"
	domainurl "github.com/bnema/shelf/internal/domain/url"
)

var errAppNotInitialized = errors.New("app not initialized")

var faviconCmd = &cobra.Command{
	Use:   "favicon",
	Short: "Resolve and maintain bookmark favicons",
}

var faviconResolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve the favicon of a URL",
	Long: `Resolve the favicon of a URL through the cache, the icon service and a
direct fetch of the site, in that order.

Examples:
  shelf favicon resolve https://github.com
  shelf favicon resolve --force github.com`,
	Args: cobra.ExactArgs(1),
	RunE: runFaviconResolve,
}

var faviconPeekCmd = &cobra.Command{
	Use:   "peek <domain>",
	Short: "Show the cached favicon of a domain without fetching",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		res := app.Favicons.PeekCache(app.Ctx(), args[0])
		fmt.Println(styles.NewFaviconRenderer(app.Theme).RenderResult(args[0], res))
		return nil
	},
}

var faviconStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show favicon cache usage",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		fmt.Println(styles.NewFaviconRenderer(app.Theme).RenderStats(app.Favicons.Stats(app.Ctx())))
		return nil
	},
}

var faviconResetFailuresCmd = &cobra.Command{
	Use:   "reset-failures [domain]",
	Short: "Forget failed domains so they are retried",
	Long: `Forget failed domains so they are retried on next resolution.

Without an argument the whole failure registry is cleared. The favicon
cache itself is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		if len(args) == 1 {
			app.Favicons.ClearFailure(app.Ctx(), args[0])
		} else {
			app.Favicons.ClearFailureRegistry(app.Ctx())
		}
		fmt.Println(styles.NewFaviconRenderer(app.Theme).RenderCleared())
		return nil
	},
}

var faviconMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Replace legacy external favicon URLs with inline icons",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		renderer := styles.NewFaviconRenderer(app.Theme)

		uc, err := app.MigrateUseCase()
		if err != nil {
			return err
		}
		report, err := uc.Execute(app.Ctx())
		if err != nil {
			fmt.Println(renderer.RenderError(errors.New("migration did not complete, see logs")))
		}
		if report != nil {
			fmt.Println(renderer.RenderJobReport("Migration", report))
		}
		return nil
	},
}

var faviconRefreshCategoryCmd = &cobra.Command{
	Use:   "refresh-category <category-id>",
	Short: "Re-acquire the favicons of every bookmark in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		renderer := styles.NewFaviconRenderer(app.Theme)

		uc, err := app.RefreshCategoryUseCase()
		if err != nil {
			return err
		}
		report, err := uc.Execute(app.Ctx(), entity.CategoryID(args[0]))
		if err != nil {
			fmt.Println(renderer.RenderError(errors.New("refresh did not complete, see logs")))
		}
		if report != nil {
			fmt.Println(renderer.RenderJobReport("Refresh", report))
		}
		return nil
	},
}

func init() {
	faviconResolveCmd.Flags().BoolP("force", "f", false, "bypass the cache and the failure cooldown")

	faviconCmd.AddCommand(
		faviconResolveCmd,
		faviconPeekCmd,
		faviconStatsCmd,
		faviconResetFailuresCmd,
		faviconMigrateCmd,
		faviconRefreshCategoryCmd,
	)
	rootCmd.AddCommand(faviconCmd)
}

func runFaviconResolve(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errAppNotInitialized
	}
	force, _ := cmd.Flags().GetBool("force")

	target := withScheme(args[0])
	var res entity.IconResult
	if force {
		res = app.Favicons.ForceRefresh(app.Ctx(), target)
	} else {
		res = app.Favicons.Resolve(app.Ctx(), target)
	}

	fmt.Println(styles.NewFaviconRenderer(app.Theme).RenderResult(target, res))
	return nil
}

// withScheme lets users type bare domains on the command line.
func withScheme(raw string) string {
	return domainurl.Normalize(raw)
}

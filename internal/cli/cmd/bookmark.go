package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bnema/shelf/internal/cli/styles"
	"github.com/bnema/shelf/internal/domain/entity"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarks",
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a bookmark and resolve its favicon",
	Long: `Save a bookmark and resolve its favicon.

Pass --favicon to store an explicit icon reference instead, for example
an external icon URL to be converted later by 'shelf favicon migrate'.

Examples:
  shelf bookmark add https://github.com --name GitHub --category dev
  shelf bookmark add https://go.dev --favicon https://go.dev/favicon.ico`,
	Args: cobra.ExactArgs(1),
	RunE: runBookmarkAdd,
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage bookmark categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return errAppNotInitialized
		}
		categories, err := app.Categories()
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetString("id")
		category := newCategory(id, args[0])
		if err := categories.Save(app.Ctx(), category); err != nil {
			return fmt.Errorf("save category: %w", err)
		}

		fmt.Printf("%s %s %s\n",
			app.Theme.SuccessStyle.Render(styles.IconCheck),
			app.Theme.Title.Render(category.Name),
			app.Theme.Subtle.Render(string(category.ID)),
		)
		return nil
	},
}

func init() {
	bookmarkAddCmd.Flags().StringP("name", "n", "", "display name (defaults to the URL)")
	bookmarkAddCmd.Flags().StringP("category", "c", "", "category id")
	bookmarkAddCmd.Flags().String("favicon", "", "explicit icon reference, skips resolution")
	categoryAddCmd.Flags().String("id", "", "category id (defaults to a random UUID)")

	bookmarkCmd.AddCommand(bookmarkAddCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	rootCmd.AddCommand(bookmarkCmd, categoryCmd)
}

func runBookmarkAdd(cmd *cobra.Command, args []string) error {
	if app == nil {
		return errAppNotInitialized
	}
	bookmarks, err := app.Bookmarks()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	category, _ := cmd.Flags().GetString("category")
	icon, _ := cmd.Flags().GetString("favicon")

	target := withScheme(args[0])
	bookmark := newBookmark(target, name, entity.CategoryID(category))
	if icon != "" {
		bookmark.Favicon = icon
	} else if res := app.Favicons.Resolve(app.Ctx(), target); res.OK() {
		bookmark.Favicon = res.Data
	}

	if err := bookmarks.Save(app.Ctx(), bookmark); err != nil {
		return fmt.Errorf("save bookmark: %w", err)
	}

	fmt.Println(styles.NewFaviconRenderer(app.Theme).RenderBookmark(bookmark))
	return nil
}

func newBookmark(target, name string, category entity.CategoryID) *entity.Bookmark {
	if strings.TrimSpace(name) == "" {
		name = target
	}
	return entity.NewBookmark(entity.BookmarkID(uuid.NewString()), target, name, category)
}

func newCategory(id, name string) *entity.Category {
	if id == "" {
		id = uuid.NewString()
	}
	c := &entity.Category{ID: entity.CategoryID(id), Name: name}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	return c
}

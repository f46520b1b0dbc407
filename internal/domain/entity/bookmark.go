package entity

import "time"

// BookmarkID uniquely identifies a bookmark.
type BookmarkID string

// CategoryID uniquely identifies a bookmark category.
type CategoryID string

// Bookmark represents a saved link.
type Bookmark struct {
	ID            BookmarkID
	Name          string
	URL           string
	Description   string
	Favicon       string // data URI, legacy external URL, or empty
	CategoryID    CategoryID
	Order         int
	IsBlacklisted bool   // always render the placeholder glyph
	CustomFavicon string // user uploaded icon, never touched by favicon jobs
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBookmark creates a new bookmark for a URL.
func NewBookmark(id BookmarkID, url, name string, category CategoryID) *Bookmark {
	now := time.Now()
	return &Bookmark{
		ID:         id,
		Name:       name,
		URL:        url,
		CategoryID: category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Category groups bookmarks.
type Category struct {
	ID        CategoryID
	Name      string
	Color     string
	Order     int
	IsHidden  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookmarkUpdate is one item of a batch update. Nil fields are left untouched.
type BookmarkUpdate struct {
	ID      BookmarkID
	Favicon *string
}

// FaviconUpdate builds a batch item that rewrites only the icon reference.
// An empty icon clears the reference.
func FaviconUpdate(id BookmarkID, icon string) BookmarkUpdate {
	return BookmarkUpdate{ID: id, Favicon: &icon}
}

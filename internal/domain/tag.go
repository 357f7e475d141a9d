package domain

import "time"

// Tag groups bookmarks under a normalized name.
// Name is the source of truth: lowercase, trimmed, unicode-normalized.
// A tag's bookmark set is never empty while the tag exists — removing
// the last bookmark deletes the tag.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BookmarkIDs []string  `json:"bookmark_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Has reports whether the tag already covers the bookmark.
func (t *Tag) Has(bookmarkID string) bool {
	for _, id := range t.BookmarkIDs {
		if id == bookmarkID {
			return true
		}
	}
	return false
}

// Add appends the bookmark id if absent. Returns true if it was added.
func (t *Tag) Add(bookmarkID string) bool {
	if t.Has(bookmarkID) {
		return false
	}
	t.BookmarkIDs = append(t.BookmarkIDs, bookmarkID)
	return true
}

// Remove deletes the bookmark id from the set. Returns true if it was present.
func (t *Tag) Remove(bookmarkID string) bool {
	for i, id := range t.BookmarkIDs {
		if id == bookmarkID {
			t.BookmarkIDs = append(t.BookmarkIDs[:i], t.BookmarkIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Empty reports whether no bookmarks remain on the tag.
func (t *Tag) Empty() bool {
	return len(t.BookmarkIDs) == 0
}

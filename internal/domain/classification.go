package domain

// FolderClassification is the per-bookmark outcome of one organize run.
// Ephemeral — computed for a preview, consumed by apply, never persisted.
type FolderClassification struct {
	BookmarkID      string `json:"bookmark_id"`
	CurrentFolder   string `json:"current_folder"`
	SuggestedFolder string `json:"suggested_folder"`
	// IsNewCategory is true when SuggestedFolder matches no existing
	// user folder name (case-insensitively) at computation time.
	IsNewCategory bool `json:"is_new_category"`
}

// Changed reports whether applying this classification would move the bookmark.
func (c FolderClassification) Changed() bool {
	return c.SuggestedFolder != c.CurrentFolder
}

// Suggestion is a single classifier verdict for one bookmark.
type Suggestion struct {
	Category      string `json:"category"`
	IsNewCategory bool   `json:"is_new_category"`
}

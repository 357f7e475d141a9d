// Package classifier suggests destination folders for bookmarks using
// a language-model backend. Implementations return one suggestion per
// input bookmark; callers decide how to act on them.
package classifier

import (
	"context"
	"errors"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// ErrUnavailable is returned for every batch when no backend is configured.
var ErrUnavailable = errors.New("no classifier backend configured")

// Classifier suggests a folder for each bookmark, given the set of
// existing user folder names as candidate categories.
type Classifier interface {
	// ClassifyBatch returns suggestions aligned by index with the input
	// bookmarks. A suggestion with an empty Category means the backend
	// produced no usable verdict for that bookmark.
	ClassifyBatch(ctx context.Context, bookmarks []*domain.BookmarkNode, folderNames []string) ([]domain.Suggestion, error)
}

// Unavailable is the classifier used when no backend is configured.
// Every batch fails with ErrUnavailable; the dispatcher tolerates
// failed batches, so bookmarks simply keep their current folders.
type Unavailable struct{}

// ClassifyBatch implements Classifier.
func (Unavailable) ClassifyBatch(context.Context, []*domain.BookmarkNode, []string) ([]domain.Suggestion, error) {
	return nil, ErrUnavailable
}

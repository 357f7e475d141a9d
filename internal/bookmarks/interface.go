// Package bookmarks defines the tree source and mutation interface the
// core operates through. The store is the only id authority: every node
// id is minted by the implementation, and callers treat ids as opaque.
//
// Services take these interfaces as explicit dependencies instead of
// reaching for a shared tree, so every engine stays testable against
// fixture implementations.
package bookmarks

import (
	"context"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// TreeSource reads the live bookmark tree.
type TreeSource interface {
	// GetTree returns the root's children: the system containers with
	// their full subtrees, freshly assembled per call. Callers must
	// re-fetch before planning a destructive operation rather than
	// reuse a tree read across suspension points.
	GetTree(ctx context.Context) ([]*domain.BookmarkNode, error)

	// GetChildren returns the ordered direct children of a folder,
	// without grandchildren.
	GetChildren(ctx context.Context, folderID string) ([]*domain.BookmarkNode, error)
}

// Mutator mutates the live bookmark tree. Each call is individually
// atomic; no transactional guarantee spans multiple calls. Any failure
// is recoverable and local to the call that returned it.
type Mutator interface {
	TreeSource

	// Create adds a node under parentID. A present url creates a
	// bookmark; an empty url creates a folder. The returned node
	// carries the newly assigned id.
	Create(ctx context.Context, parentID, title, url string) (*domain.BookmarkNode, error)

	// Move reparents a node. System containers cannot be moved.
	Move(ctx context.Context, nodeID, newParentID string) (*domain.BookmarkNode, error)

	// Remove deletes a leaf node. Removing a non-empty folder is an error.
	Remove(ctx context.Context, nodeID string) error

	// RemoveSubtree deletes a folder and all its descendants. System
	// containers cannot be removed.
	RemoveSubtree(ctx context.Context, folderID string) error
}

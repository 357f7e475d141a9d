package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// TreeReader supplies the current tree for folder-name resolution and
// full reindexing. *store.Store satisfies it.
type TreeReader interface {
	GetTree(ctx context.Context) ([]*domain.BookmarkNode, error)
}

// TagReader supplies tag names for a bookmark. *store.Store satisfies it.
type TagReader interface {
	TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error)
}

// Indexer keeps the Bleve index in sync with the bookmark tree. It
// implements the store's SearchIndexer hook, so mutations feed the
// index without the store depending on Bleve.
type Indexer struct {
	index  *SearchIndex
	trees  TreeReader
	tags   TagReader
	logger *slog.Logger
}

// NewIndexer creates the sync adapter. tags may be nil.
func NewIndexer(index *SearchIndex, trees TreeReader, tags TagReader, logger *slog.Logger) *Indexer {
	return &Indexer{
		index:  index,
		trees:  trees,
		tags:   tags,
		logger: logger,
	}
}

// IndexBookmark adds or updates one bookmark in the index.
func (i *Indexer) IndexBookmark(ctx context.Context, node *domain.BookmarkNode) error {
	folder, err := i.folderName(ctx, node)
	if err != nil {
		return err
	}
	return i.index.IndexDocument(BookmarkToSearchDocument(node, folder, i.tagNames(ctx, node.ID)))
}

// DeleteBookmark removes one bookmark from the index.
func (i *Indexer) DeleteBookmark(ctx context.Context, nodeID string) error {
	return i.index.DeleteDocument(nodeID)
}

// Reindex rebuilds the index from the full tree. Used at startup when
// the mapping version changed and on explicit admin request.
func (i *Indexer) Reindex(ctx context.Context) (int, error) {
	roots, err := i.trees.GetTree(ctx)
	if err != nil {
		return 0, fmt.Errorf("read tree for reindex: %w", err)
	}

	if err := i.index.Rebuild(); err != nil {
		return 0, err
	}

	bms := tree.Flatten(roots)
	docs := make([]*SearchDocument, 0, len(bms))
	for _, bm := range bms {
		folder := ""
		if parent := tree.FindByID(roots, bm.ParentID); parent != nil && tree.Classify(parent) == domain.RoleUserFolder {
			folder = parent.Title
		}
		docs = append(docs, BookmarkToSearchDocument(bm, folder, i.tagNames(ctx, bm.ID)))
	}

	if err := i.index.IndexDocuments(docs); err != nil {
		return 0, err
	}
	i.logger.Info("search reindex completed", "documents", len(docs))
	return len(docs), nil
}

// Search proxies query execution so callers hold one handle.
func (i *Indexer) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	return i.index.Search(ctx, params)
}

func (i *Indexer) folderName(ctx context.Context, node *domain.BookmarkNode) (string, error) {
	roots, err := i.trees.GetTree(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve folder name: %w", err)
	}
	parent := tree.FindByID(roots, node.ParentID)
	if parent == nil || tree.Classify(parent) != domain.RoleUserFolder {
		return "", nil
	}
	return parent.Title, nil
}

// tagNames is best-effort: a missing tag lookup never blocks indexing.
func (i *Indexer) tagNames(ctx context.Context, bookmarkID string) []string {
	if i.tags == nil {
		return nil
	}
	tags, err := i.tags.TagsForBookmark(ctx, bookmarkID)
	if err != nil {
		i.logger.Warn("failed to load tags for indexing", "bookmark_id", bookmarkID, "error", err)
		return nil
	}
	names := make([]string, len(tags))
	for idx, t := range tags {
		names[idx] = t.Name
	}
	return names
}

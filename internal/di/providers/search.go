package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/markwiseapp/markwise-server/internal/config"
	"github.com/markwiseapp/markwise-server/internal/logger"
	"github.com/markwiseapp/markwise-server/internal/search"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Store.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchIndexer provides the tree-to-index sync adapter and
// wires it into the store so mutations feed the index automatically.
func ProvideSearchIndexer(i do.Injector) (*search.Indexer, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexer := search.NewIndexer(indexHandle.SearchIndex, storeHandle.Store, storeHandle.Store, log.Logger)
	storeHandle.SetSearchIndexer(indexer)

	return indexer, nil
}

// TriggerSearchReindexIfNeeded backfills an empty index from a
// non-empty tree. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexer := do.MustInvoke[*search.Indexer](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	roots, err := storeHandle.GetTree(ctx)
	if err != nil || len(tree.Flatten(roots)) == 0 {
		return
	}

	log.Info("Search index is empty but bookmarks exist, triggering initial reindex")

	go func() {
		if _, err := indexer.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		}
	}()
}

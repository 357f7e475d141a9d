// Package di provides dependency injection configuration for the Markwise server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/markwiseapp/markwise-server/internal/classifier"
	"github.com/markwiseapp/markwise-server/internal/config"
	"github.com/markwiseapp/markwise-server/internal/di/providers"
	"github.com/markwiseapp/markwise-server/internal/logger"
	"github.com/markwiseapp/markwise-server/internal/search"
	"github.com/markwiseapp/markwise-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Persistence and eventing
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchIndexer)

	// Classifier
	do.Provide(injector, providers.ProvideClassifier)

	// Business services
	do.Provide(injector, providers.ProvideSnapshotService)
	do.Provide(injector, providers.ProvideOrganizeService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideCleanService)
	do.Provide(injector, providers.ProvideImportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*search.Indexer](injector)
	_ = do.MustInvoke[classifier.Classifier](injector)

	// Business services
	_ = do.MustInvoke[*service.SnapshotService](injector)
	_ = do.MustInvoke[*service.OrganizeService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.CleanService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Backfill the search index if it is empty but the tree is not
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

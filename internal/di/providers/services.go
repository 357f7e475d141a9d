package providers

import (
	"github.com/samber/do/v2"

	"github.com/markwiseapp/markwise-server/internal/classifier"
	"github.com/markwiseapp/markwise-server/internal/config"
	"github.com/markwiseapp/markwise-server/internal/linkcheck"
	"github.com/markwiseapp/markwise-server/internal/logger"
	"github.com/markwiseapp/markwise-server/internal/service"
)

// ProvideClassifier provides the bookmark classifier. Without an API
// key the classifier is unavailable and organize previews propose no
// changes.
func ProvideClassifier(i do.Injector) (classifier.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Classifier.APIKey == "" {
		log.Warn("No classifier API key configured, reclassification is disabled")
		return classifier.Unavailable{}, nil
	}

	return classifier.NewOpenAI(classifier.Config{
		APIKey:            cfg.Classifier.APIKey,
		Model:             cfg.Classifier.Model,
		RequestsPerMinute: cfg.Classifier.RequestsPerMinute,
		Timeout:           cfg.Classifier.Timeout,
	}, log.Logger)
}

// ProvideSnapshotService provides the snapshot and restore engine.
func ProvideSnapshotService(i do.Injector) (*service.SnapshotService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSnapshotService(
		storeHandle.Store,
		storeHandle.Store,
		storeHandle.Store,
		sseHandle.Manager,
		log.Logger,
		cfg.Retention.Snapshots,
		cfg.Retention.Operations,
	), nil
}

// ProvideOrganizeService provides the bulk reclassification engine.
func ProvideOrganizeService(i do.Injector) (*service.OrganizeService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	c := do.MustInvoke[classifier.Classifier](i)
	snapshots := do.MustInvoke[*service.SnapshotService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOrganizeService(
		storeHandle.Store,
		c,
		snapshots,
		sseHandle.Manager,
		log.Logger,
		cfg.Classifier.BatchSize,
	), nil
}

// ProvideTagService provides the tag manager.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideCleanService provides the duplicate and broken-link cleaner.
func ProvideCleanService(i do.Injector) (*service.CleanService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[*service.SnapshotService](i)
	tags := do.MustInvoke[*service.TagService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCleanService(
		storeHandle.Store,
		snapshots,
		linkcheck.New(0),
		tags,
		sseHandle.Manager,
		log.Logger,
	), nil
}

// ProvideImportService provides the bookmark file import engine.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[*service.SnapshotService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(storeHandle.Store, snapshots, sseHandle.Manager, log.Logger), nil
}

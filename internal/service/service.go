// Package service implements the core engines: batch classification,
// reconciliation, snapshots and restore, cleanup, tags, and import.
// Services depend on narrow consumer-side interfaces so each engine is
// testable against fixtures.
package service

import (
	"context"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// SnapshotStore is the persistence surface the snapshot service needs.
// *store.Store satisfies it.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snap *domain.Snapshot) error
	GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]*domain.Snapshot, error)
	DeleteSnapshot(ctx context.Context, snapshotID string) error
	PruneSnapshots(ctx context.Context, retain int) error
}

// OperationStore persists the append-only audit log.
type OperationStore interface {
	AppendOperation(ctx context.Context, entry *domain.OperationLogEntry) error
	ListOperations(ctx context.Context) ([]*domain.OperationLogEntry, error)
	PruneOperations(ctx context.Context, retain int) error
}

// TagStore persists tags and their bookmark-id sets.
type TagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, tagID string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, tagID string) error
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error)
}

// Notifier publishes server-sent events to connected clients. Services
// publish progress and completion events; delivery is best-effort.
type Notifier interface {
	Publish(event string, data any)
}

// Event names published by the services.
const (
	EventOrganizeProgress = "organize.progress"
	EventSnapshotCreated  = "snapshot.created"
	EventRestoreCompleted = "restore.completed"
	EventCleanCompleted   = "clean.completed"
	EventImportCompleted  = "import.completed"
)

// NoopNotifier discards all events.
type NoopNotifier struct{}

func (NoopNotifier) Publish(string, any) {}

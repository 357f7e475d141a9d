package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/markwiseapp/markwise-server/internal/bookmarks"
	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/id"
	"github.com/markwiseapp/markwise-server/internal/store"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// SnapshotService captures and restores deep copies of the bookmark
// tree. Creating a snapshot must complete before any caller proceeds to
// a destructive mutation; every bulk operation goes through Create
// first.
type SnapshotService struct {
	source    bookmarks.Mutator
	snapshots SnapshotStore
	oplog     OperationStore
	notifier  Notifier
	logger    *slog.Logger

	retainSnapshots  int
	retainOperations int
}

// NewSnapshotService creates a snapshot service. retainSnapshots and
// retainOperations bound the history kept after each new entry.
func NewSnapshotService(source bookmarks.Mutator, snapshots SnapshotStore, oplog OperationStore, notifier Notifier, logger *slog.Logger, retainSnapshots, retainOperations int) *SnapshotService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &SnapshotService{
		source:           source,
		snapshots:        snapshots,
		oplog:            oplog,
		notifier:         notifier,
		logger:           logger,
		retainSnapshots:  retainSnapshots,
		retainOperations: retainOperations,
	}
}

// Create captures the current tree. The returned record is persisted
// and retrievable before Create returns; retention pruning runs after
// the new snapshot is durable.
func (s *SnapshotService) Create(ctx context.Context, description string) (*domain.Snapshot, error) {
	roots, err := s.source.GetTree(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read tree for snapshot")
	}

	snap := &domain.Snapshot{
		ID:            id.MustGenerate("snap"),
		CreatedAt:     time.Now().UTC(),
		BookmarkCount: tree.Stats(roots).BookmarkCount,
		Description:   description,
		Tree:          tree.Clone(roots),
	}

	if err := s.snapshots.PutSnapshot(ctx, snap); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "persist snapshot")
	}

	if err := s.snapshots.PruneSnapshots(ctx, s.retainSnapshots); err != nil {
		s.logger.Warn("snapshot pruning failed", "error", err)
	}

	s.notifier.Publish(EventSnapshotCreated, map[string]any{
		"snapshot_id":    snap.ID,
		"bookmark_count": snap.BookmarkCount,
	})
	s.logger.Info("snapshot created",
		"snapshot_id", snap.ID,
		"bookmark_count", snap.BookmarkCount,
		"description", description)
	return snap, nil
}

// Get returns a snapshot with its captured tree.
func (s *SnapshotService) Get(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	snap, err := s.snapshots.GetSnapshot(ctx, snapshotID)
	if apperrors.Is(err, store.ErrSnapshotNotFound) {
		return nil, apperrors.NotFoundf("snapshot %s not found", snapshotID)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns snapshot metadata newest-first, without captured trees.
func (s *SnapshotService) List(ctx context.Context) ([]*domain.Snapshot, error) {
	return s.snapshots.ListSnapshots(ctx)
}

// Delete removes a snapshot; a missing id is a no-op.
func (s *SnapshotService) Delete(ctx context.Context, snapshotID string) error {
	return s.snapshots.DeleteSnapshot(ctx, snapshotID)
}

// Operations returns the audit log newest-first.
func (s *SnapshotService) Operations(ctx context.Context) ([]*domain.OperationLogEntry, error) {
	return s.oplog.ListOperations(ctx)
}

// recordOperation appends an audit entry and prunes the log. Logging
// failures are reported but never fail the operation they describe.
func (s *SnapshotService) recordOperation(ctx context.Context, kind domain.OperationKind, affected int, description, snapshotID string) {
	entry := &domain.OperationLogEntry{
		ID:            id.MustGenerate("op"),
		CreatedAt:     time.Now().UTC(),
		Kind:          kind,
		AffectedCount: affected,
		Description:   description,
		SnapshotID:    snapshotID,
	}
	if err := s.oplog.AppendOperation(ctx, entry); err != nil {
		s.logger.Error("failed to append operation log entry", "kind", kind, "error", err)
		return
	}
	if err := s.oplog.PruneOperations(ctx, s.retainOperations); err != nil {
		s.logger.Warn("operation log pruning failed", "error", err)
	}
}

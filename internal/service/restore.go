package service

import (
	"context"
	"fmt"

	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// RestoreResult summarizes one restore run.
type RestoreResult struct {
	SnapshotID    string `json:"snapshot_id"`
	ClearedCount  int    `json:"cleared_count"`
	RestoredCount int    `json:"restored_count"`
}

// Restore clears current user content and rebuilds it from a snapshot.
//
// Snapshot containers are matched to live containers by role, never by
// id: container ids are not guaranteed stable, and every recreated node
// gets a fresh id from the store. The run is not transactional — each
// delete and create is individually atomic, and a mid-run failure
// surfaces as a partial-completion error carrying the counts so far.
func (s *SnapshotService) Restore(ctx context.Context, snapshotID string) (*RestoreResult, error) {
	snap, err := s.Get(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{SnapshotID: snapshotID}

	live, err := s.source.GetTree(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read live tree")
	}

	// Clear every container's user content first. Folders go via
	// RemoveSubtree, bare bookmarks via Remove; containers themselves
	// are never touched.
	for _, container := range live {
		for _, child := range container.Children {
			if child.IsFolder() {
				err = s.source.RemoveSubtree(ctx, child.ID)
			} else {
				err = s.source.Remove(ctx, child.ID)
			}
			if err != nil {
				return result, apperrors.Partial(
					fmt.Sprintf("restore aborted while clearing %q", child.Title), result).WithCause(err)
			}
			result.ClearedCount++
		}
	}

	// Rebuild from the snapshot. Resolve each recorded container to the
	// live container of the same type and recreate its subtree there.
	for _, recorded := range snap.Tree {
		target := tree.ContainerByType(live, recorded.Type)
		if target == nil {
			s.logger.Warn("snapshot records a container the live tree lacks", "type", recorded.Type)
			continue
		}
		for _, child := range recorded.Children {
			if err := s.rebuild(ctx, target.ID, child, result); err != nil {
				return result, err
			}
		}
	}

	s.recordOperation(ctx, domain.OperationRollback, result.RestoredCount,
		fmt.Sprintf("restored snapshot %s", snapshotID), snapshotID)
	s.notifier.Publish(EventRestoreCompleted, result)
	s.logger.Info("restore completed",
		"snapshot_id", snapshotID,
		"cleared", result.ClearedCount,
		"restored", result.RestoredCount)
	return result, nil
}

// rebuild recreates one recorded node and its descendants under the
// given live parent id.
func (s *SnapshotService) rebuild(ctx context.Context, parentID string, node *domain.BookmarkNode, result *RestoreResult) error {
	created, err := s.source.Create(ctx, parentID, node.Title, node.URL)
	if err != nil {
		return apperrors.Partial(
			fmt.Sprintf("restore aborted while recreating %q", node.Title), result).WithCause(err)
	}
	if !node.IsFolder() {
		result.RestoredCount++
		return nil
	}
	for _, child := range node.Children {
		if err := s.rebuild(ctx, created.ID, child, result); err != nil {
			return err
		}
	}
	return nil
}

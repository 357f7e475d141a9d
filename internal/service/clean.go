package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markwiseapp/markwise-server/internal/bookmarks"
	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// LinkChecker probes whether a bookmark's URL still resolves. Broken
// link detection is optional; a nil checker disables it.
type LinkChecker interface {
	Check(ctx context.Context, url string) error
}

// CleanService detects duplicate and broken bookmarks and removes them
// behind a snapshot.
type CleanService struct {
	mutator   bookmarks.Mutator
	snapshots *SnapshotService
	checker   LinkChecker
	tags      *TagService
	notifier  Notifier
	logger    *slog.Logger
}

// NewCleanService creates the cleanup engine. checker and tags may be nil.
func NewCleanService(mutator bookmarks.Mutator, snapshots *SnapshotService, checker LinkChecker, tags *TagService, notifier Notifier, logger *slog.Logger) *CleanService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CleanService{
		mutator:   mutator,
		snapshots: snapshots,
		checker:   checker,
		tags:      tags,
		notifier:  notifier,
		logger:    logger,
	}
}

// CleanCandidate is one bookmark proposed for removal.
type CleanCandidate struct {
	BookmarkID string `json:"bookmark_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Reason     string `json:"reason"` // "duplicate" or "broken"
}

// CleanResult summarizes one clean apply run.
type CleanResult struct {
	SnapshotID   string `json:"snapshot_id"`
	RemovedCount int    `json:"removed_count"`
	FailedCount  int    `json:"failed_count"`
}

// Preview scans the tree for duplicate URLs and, when a link checker is
// configured, broken links. For each URL appearing more than once the
// oldest bookmark is kept; creation-time ties keep the first in tree
// order.
func (s *CleanService) Preview(ctx context.Context) ([]CleanCandidate, error) {
	roots, err := s.mutator.GetTree(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read tree")
	}

	bms := tree.Flatten(roots)
	candidates := s.findDuplicates(bms)

	if s.checker != nil {
		flagged := make(map[string]bool, len(candidates))
		for _, c := range candidates {
			flagged[c.BookmarkID] = true
		}
		for _, bm := range bms {
			if flagged[bm.ID] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.checker.Check(ctx, bm.URL); err != nil {
				candidates = append(candidates, CleanCandidate{
					BookmarkID: bm.ID,
					Title:      bm.Title,
					URL:        bm.URL,
					Reason:     "broken",
				})
			}
		}
	}

	return candidates, nil
}

// findDuplicates groups bookmarks by exact URL and proposes everything
// but the keeper for removal.
func (s *CleanService) findDuplicates(bms []*domain.BookmarkNode) []CleanCandidate {
	byURL := make(map[string][]*domain.BookmarkNode)
	for _, bm := range bms {
		byURL[bm.URL] = append(byURL[bm.URL], bm)
	}

	var candidates []CleanCandidate
	for _, bm := range bms {
		group := byURL[bm.URL]
		if len(group) < 2 {
			continue
		}
		if bm == keeper(group) {
			continue
		}
		candidates = append(candidates, CleanCandidate{
			BookmarkID: bm.ID,
			Title:      bm.Title,
			URL:        bm.URL,
			Reason:     "duplicate",
		})
	}
	return candidates
}

// keeper picks the bookmark to survive a duplicate group: oldest by
// creation time, first in tree order on a tie or when times are absent.
func keeper(group []*domain.BookmarkNode) *domain.BookmarkNode {
	best := group[0]
	for _, bm := range group[1:] {
		if !bm.CreatedAt.IsZero() && (best.CreatedAt.IsZero() || bm.CreatedAt.Before(best.CreatedAt)) {
			best = bm
		}
	}
	return best
}

// Apply removes the given bookmarks behind a fresh snapshot. Individual
// removal failures are counted, not fatal.
func (s *CleanService) Apply(ctx context.Context, bookmarkIDs []string) (*CleanResult, error) {
	result := &CleanResult{}
	if len(bookmarkIDs) == 0 {
		return result, nil
	}

	snap, err := s.snapshots.Create(ctx, "before clean")
	if err != nil {
		return nil, err
	}
	result.SnapshotID = snap.ID

	for _, bookmarkID := range bookmarkIDs {
		if err := s.mutator.Remove(ctx, bookmarkID); err != nil {
			s.logger.Warn("failed to remove bookmark", "bookmark_id", bookmarkID, "error", err)
			result.FailedCount++
			continue
		}
		if s.tags != nil {
			if err := s.tags.RemoveBookmark(ctx, bookmarkID); err != nil {
				s.logger.Warn("failed to untag removed bookmark", "bookmark_id", bookmarkID, "error", err)
			}
		}
		result.RemovedCount++
	}

	s.snapshots.recordOperation(ctx, domain.OperationClean, result.RemovedCount,
		fmt.Sprintf("removed %d bookmarks", result.RemovedCount), snap.ID)
	s.notifier.Publish(EventCleanCompleted, result)
	s.logger.Info("clean applied", "removed", result.RemovedCount, "failed", result.FailedCount)
	return result, nil
}

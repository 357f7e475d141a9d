package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/markwiseapp/markwise-server/internal/bookmarks"
	"github.com/markwiseapp/markwise-server/internal/classifier"
	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// OrganizeService drives bulk reclassification: batch dispatch to the
// classifier, change computation, planning, and application against the
// live tree.
type OrganizeService struct {
	mutator    bookmarks.Mutator
	classifier classifier.Classifier
	snapshots  *SnapshotService
	notifier   Notifier
	logger     *slog.Logger
	batchSize  int
}

// NewOrganizeService creates the reclassification engine.
func NewOrganizeService(mutator bookmarks.Mutator, c classifier.Classifier, snapshots *SnapshotService, notifier Notifier, logger *slog.Logger, batchSize int) *OrganizeService {
	if batchSize <= 0 {
		batchSize = 20
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &OrganizeService{
		mutator:    mutator,
		classifier: c,
		snapshots:  snapshots,
		notifier:   notifier,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// ProgressFunc receives cumulative progress: how many bookmarks have
// been attempted so far out of the total. Attempted includes bookmarks
// in failed batches; progress always reaches total.
type ProgressFunc func(attempted, total int)

// ClassifyInBatches partitions bookmarks into consecutive fixed-size
// batches and classifies each sequentially. The result maps bookmark id
// to its suggestion; bookmarks from failed batches are absent. One bad
// batch never aborts the run.
func (s *OrganizeService) ClassifyInBatches(ctx context.Context, bms []*domain.BookmarkNode, folderNames []string, progress ProgressFunc) (map[string]domain.Suggestion, error) {
	results := make(map[string]domain.Suggestion, len(bms))
	total := len(bms)
	attempted := 0

	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+s.batchSize, total)
		batch := bms[start:end]

		suggestions, err := s.classifier.ClassifyBatch(ctx, batch, folderNames)
		if err != nil {
			s.logger.Warn("classification batch failed",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err)
		} else {
			// Suggestions are index-aligned with the batch; a backend
			// returning extra entries only gets the first len(batch) used.
			for i, suggestion := range suggestions {
				if i >= len(batch) {
					s.logger.Warn("classifier returned more suggestions than batch entries",
						"batch_size", len(batch),
						"suggestions", len(suggestions))
					break
				}
				if suggestion.Category == "" {
					continue
				}
				results[batch[i].ID] = suggestion
			}
		}

		attempted += len(batch)
		if progress != nil {
			progress(attempted, total)
		}
		s.notifier.Publish(EventOrganizeProgress, map[string]int{
			"attempted": attempted,
			"total":     total,
		})
	}

	return results, nil
}

// ComputeChanges joins each bookmark to its classification outcome. A
// bookmark with no entry in the mapping falls back to no change: its
// suggested folder equals its current folder.
func ComputeChanges(roots []*domain.BookmarkNode, bms []*domain.BookmarkNode, classifications map[string]domain.Suggestion) []domain.FolderClassification {
	changes := make([]domain.FolderClassification, 0, len(bms))
	for _, bm := range bms {
		current := currentFolderName(roots, bm)
		change := domain.FolderClassification{
			BookmarkID:      bm.ID,
			CurrentFolder:   current,
			SuggestedFolder: current,
		}
		if suggestion, ok := classifications[bm.ID]; ok {
			change.SuggestedFolder = suggestion.Category
			change.IsNewCategory = suggestion.IsNewCategory
		}
		changes = append(changes, change)
	}
	return changes
}

// currentFolderName returns the display name of the user folder holding
// the bookmark, or "" when it sits directly in a system container.
func currentFolderName(roots []*domain.BookmarkNode, bm *domain.BookmarkNode) string {
	parent := tree.FindByID(roots, bm.ParentID)
	if parent == nil || tree.Classify(parent) != domain.RoleUserFolder {
		return ""
	}
	return parent.Title
}

// OrganizePlan is the reconciliation output: the distinct new folders
// to create and the moves to perform, in input order.
type OrganizePlan struct {
	FoldersToCreate []string      `json:"folders_to_create"`
	Moves           []PlannedMove `json:"moves"`
}

// PlannedMove targets a folder by display name; apply resolves the name
// to an id after folder creation.
type PlannedMove struct {
	BookmarkID   string `json:"bookmark_id"`
	TargetFolder string `json:"target_folder"`
}

// Plan reduces a change set to the minimal structural work. New-category
// names are deduplicated case-insensitively, so at most one creation
// call is issued per distinct name; unchanged bookmarks produce no move.
func Plan(changes []domain.FolderClassification) OrganizePlan {
	var plan OrganizePlan
	seen := make(map[string]bool)

	for _, change := range changes {
		if !change.Changed() {
			continue
		}
		if change.IsNewCategory {
			key := strings.ToLower(change.SuggestedFolder)
			if !seen[key] {
				seen[key] = true
				plan.FoldersToCreate = append(plan.FoldersToCreate, change.SuggestedFolder)
			}
		}
		plan.Moves = append(plan.Moves, PlannedMove{
			BookmarkID:   change.BookmarkID,
			TargetFolder: change.SuggestedFolder,
		})
	}
	sort.Strings(plan.FoldersToCreate)
	return plan
}

// OrganizeResult summarizes one apply run.
type OrganizeResult struct {
	SnapshotID     string            `json:"snapshot_id"`
	CreatedFolders map[string]string `json:"created_folders"` // name -> new folder id
	MovedCount     int               `json:"moved_count"`
	SkippedCount   int               `json:"skipped_count"`
	FailedCount    int               `json:"failed_count"`
}

// Preview classifies bookmarks and returns the change set without
// mutating anything. An empty bookmarkIDs selects every bookmark in the
// tree; otherwise only the named bookmarks are classified, and unknown
// ids are ignored.
func (s *OrganizeService) Preview(ctx context.Context, bookmarkIDs []string) ([]domain.FolderClassification, error) {
	roots, err := s.mutator.GetTree(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "read tree")
	}

	bms := tree.Flatten(roots)
	if len(bookmarkIDs) > 0 {
		selected := make(map[string]bool, len(bookmarkIDs))
		for _, id := range bookmarkIDs {
			selected[id] = true
		}
		subset := make([]*domain.BookmarkNode, 0, len(bookmarkIDs))
		for _, bm := range bms {
			if selected[bm.ID] {
				subset = append(subset, bm)
			}
		}
		bms = subset
	}
	classifications, err := s.ClassifyInBatches(ctx, bms, tree.FolderNames(roots), nil)
	if err != nil {
		return nil, err
	}
	return ComputeChanges(roots, bms, classifications), nil
}

// Apply executes a change set: snapshot first, then folder creation,
// then moves. Folder creation strictly precedes all moves so every move
// target resolves to a valid id.
//
// The run is best-effort, not transactional: a failed folder creation
// leaves that category's bookmarks in place, a failed move leaves that
// bookmark in place, and both are reported in the result counts rather
// than rolling anything back.
func (s *OrganizeService) Apply(ctx context.Context, changes []domain.FolderClassification) (*OrganizeResult, error) {
	plan := Plan(changes)
	result := &OrganizeResult{CreatedFolders: make(map[string]string)}

	if len(plan.Moves) == 0 && len(plan.FoldersToCreate) == 0 {
		return result, nil
	}

	// Snapshot creation is a hard precondition of mutation.
	snap, err := s.snapshots.Create(ctx, "before bulk reclassify")
	if err != nil {
		return nil, err
	}
	result.SnapshotID = snap.ID

	roots, err := s.mutator.GetTree(ctx)
	if err != nil {
		return result, apperrors.Wrap(err, apperrors.CodeUpstream, "read tree")
	}

	// Resolve move targets by lowercased name: existing folders first,
	// then folders created by this run.
	folderIDs := make(map[string]string)
	for _, folder := range tree.UserFolders(roots) {
		key := strings.ToLower(folder.Title)
		if _, ok := folderIDs[key]; !ok {
			folderIDs[key] = folder.ID
		}
	}

	parentID, err := s.newFolderParent(ctx, roots)
	if err != nil {
		return result, err
	}

	for _, name := range plan.FoldersToCreate {
		key := strings.ToLower(name)
		if _, ok := folderIDs[key]; ok {
			continue
		}
		folder, err := s.mutator.Create(ctx, parentID, name, "")
		if err != nil {
			// This category's bookmarks stay where they are.
			s.logger.Warn("folder creation failed", "name", name, "error", err)
			continue
		}
		folderIDs[key] = folder.ID
		result.CreatedFolders[name] = folder.ID
	}

	for _, move := range plan.Moves {
		targetID, ok := folderIDs[strings.ToLower(move.TargetFolder)]
		if !ok {
			result.FailedCount++
			continue
		}
		bm := tree.FindByID(roots, move.BookmarkID)
		if bm == nil {
			result.FailedCount++
			continue
		}
		if bm.ParentID == targetID {
			result.SkippedCount++
			continue
		}
		if _, err := s.mutator.Move(ctx, move.BookmarkID, targetID); err != nil {
			s.logger.Warn("move failed",
				"bookmark_id", move.BookmarkID,
				"target", move.TargetFolder,
				"error", err)
			result.FailedCount++
			continue
		}
		result.MovedCount++
	}

	s.snapshots.recordOperation(ctx, domain.OperationReclassify, result.MovedCount,
		fmt.Sprintf("reclassified %d bookmarks (%d folders created)", result.MovedCount, len(result.CreatedFolders)),
		snap.ID)
	s.logger.Info("reclassify applied",
		"moved", result.MovedCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
		"folders_created", len(result.CreatedFolders))
	return result, nil
}

// newFolderParent picks where new category folders land: the bookmarks
// bar container.
func (s *OrganizeService) newFolderParent(ctx context.Context, roots []*domain.BookmarkNode) (string, error) {
	if bar := tree.ContainerByType(roots, domain.ContainerBookmarksBar); bar != nil {
		return bar.ID, nil
	}
	return "", apperrors.Internal("bookmarks bar container missing")
}

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/markwiseapp/markwise-server/internal/bookmarks"
	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/importer"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

// ImportService loads browser bookmark exports into the tree.
type ImportService struct {
	mutator   bookmarks.Mutator
	snapshots *SnapshotService
	notifier  Notifier
	logger    *slog.Logger
}

// NewImportService creates the import engine.
func NewImportService(mutator bookmarks.Mutator, snapshots *SnapshotService, notifier Notifier, logger *slog.Logger) *ImportService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ImportService{
		mutator:   mutator,
		snapshots: snapshots,
		notifier:  notifier,
		logger:    logger,
	}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	SnapshotID    string `json:"snapshot_id"`
	ImportedCount int    `json:"imported_count"`
	FolderCount   int    `json:"folder_count"`
}

// Import parses a Netscape bookmark file and creates its content under
// the "other" container, behind a fresh snapshot. Import is additive
// but still snapshot-guarded so a bad file can be rolled back.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	parsed, err := importer.Parse(r)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "parse bookmark file")
	}
	if len(parsed) == 0 {
		return nil, apperrors.Validation("bookmark file contains no entries")
	}

	snap, err := s.snapshots.Create(ctx, "before import")
	if err != nil {
		return nil, err
	}
	result := &ImportResult{SnapshotID: snap.ID}

	roots, err := s.mutator.GetTree(ctx)
	if err != nil {
		return result, apperrors.Wrap(err, apperrors.CodeUpstream, "read tree")
	}
	other := tree.ContainerByType(roots, domain.ContainerOther)
	if other == nil {
		return result, apperrors.Internal("other-bookmarks container missing")
	}

	for _, node := range parsed {
		if err := s.create(ctx, other.ID, node, result); err != nil {
			return result, err
		}
	}

	s.snapshots.recordOperation(ctx, domain.OperationImport, result.ImportedCount,
		fmt.Sprintf("imported %d bookmarks in %d folders", result.ImportedCount, result.FolderCount),
		snap.ID)
	s.notifier.Publish(EventImportCompleted, result)
	s.logger.Info("import completed",
		"bookmarks", result.ImportedCount,
		"folders", result.FolderCount)
	return result, nil
}

func (s *ImportService) create(ctx context.Context, parentID string, node *importer.ParsedNode, result *ImportResult) error {
	created, err := s.mutator.Create(ctx, parentID, node.Title, node.URL)
	if err != nil {
		return apperrors.Partial(
			fmt.Sprintf("import aborted while creating %q", node.Title), result).WithCause(err)
	}
	if !node.IsFolder() {
		result.ImportedCount++
		return nil
	}
	result.FolderCount++
	for _, child := range node.Children {
		if err := s.create(ctx, created.ID, child, result); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the current tree as a Netscape bookmark file.
func (s *ImportService) Export(ctx context.Context, w io.Writer) error {
	roots, err := s.mutator.GetTree(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUpstream, "read tree")
	}
	return importer.Export(w, roots)
}

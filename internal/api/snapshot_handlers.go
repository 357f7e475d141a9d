package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/service"
)

func (s *Server) registerSnapshotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSnapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List snapshots",
		Description: "Returns snapshot metadata newest-first, without captured trees",
		Tags:        []string{"Snapshots"},
	}, s.handleListSnapshots)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createSnapshot",
		Method:        http.MethodPost,
		Path:          "/api/v1/snapshots",
		Summary:       "Create snapshot",
		Description:   "Captures a deep copy of the current tree",
		Tags:          []string{"Snapshots"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}",
		Summary:     "Get snapshot",
		Description: "Returns a snapshot with its captured tree",
		Tags:        []string{"Snapshots"},
	}, s.handleGetSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSnapshot",
		Method:        http.MethodDelete,
		Path:          "/api/v1/snapshots/{id}",
		Summary:       "Delete snapshot",
		Description:   "Removes a snapshot; unknown IDs are a no-op",
		Tags:          []string{"Snapshots"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreSnapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/snapshots/{id}/restore",
		Summary:     "Restore snapshot",
		Description: "Clears current user content and rebuilds it from the snapshot",
		Tags:        []string{"Snapshots"},
	}, s.handleRestoreSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOperations",
		Method:      http.MethodGet,
		Path:        "/api/v1/operations",
		Summary:     "List operations",
		Description: "Returns the bulk-operation audit log newest-first",
		Tags:        []string{"Operations"},
	}, s.handleListOperations)
}

// === DTOs ===

// SnapshotResponse contains snapshot metadata in API responses.
type SnapshotResponse struct {
	ID            string    `json:"id" doc:"Snapshot ID"`
	CreatedAt     time.Time `json:"created_at" doc:"Capture time"`
	BookmarkCount int       `json:"bookmark_count" doc:"Bookmarks in the captured tree"`
	Description   string    `json:"description,omitempty" doc:"Why the snapshot was taken"`
}

// ListSnapshotsResponse contains a list of snapshots.
type ListSnapshotsResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots" doc:"Snapshots newest-first"`
}

// ListSnapshotsOutput wraps the list snapshots response for Huma.
type ListSnapshotsOutput struct {
	Body ListSnapshotsResponse
}

// CreateSnapshotRequest is the request body for creating a snapshot.
type CreateSnapshotRequest struct {
	Description string `json:"description,omitempty" maxLength:"200" doc:"Why the snapshot is taken"`
}

// CreateSnapshotInput wraps the create snapshot request for Huma.
type CreateSnapshotInput struct {
	Body CreateSnapshotRequest
}

// SnapshotOutput wraps snapshot metadata for Huma.
type SnapshotOutput struct {
	Body SnapshotResponse
}

// GetSnapshotInput contains parameters for getting a snapshot.
type GetSnapshotInput struct {
	ID string `path:"id" doc:"Snapshot ID"`
}

// SnapshotDetailOutput wraps a snapshot with its captured tree for Huma.
type SnapshotDetailOutput struct {
	Body *domain.Snapshot
}

// RestoreSnapshotOutput wraps the restore result for Huma.
type RestoreSnapshotOutput struct {
	Body service.RestoreResult
}

// ListOperationsResponse contains the audit log.
type ListOperationsResponse struct {
	Operations []*domain.OperationLogEntry `json:"operations" doc:"Audit entries newest-first"`
}

// ListOperationsOutput wraps the operations response for Huma.
type ListOperationsOutput struct {
	Body ListOperationsResponse
}

// === Handlers ===

func (s *Server) handleListSnapshots(ctx context.Context, _ *struct{}) (*ListSnapshotsOutput, error) {
	snaps, err := s.services.Snapshot.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]SnapshotResponse, len(snaps))
	for i, snap := range snaps {
		resp[i] = snapshotToResponse(snap)
	}
	return &ListSnapshotsOutput{Body: ListSnapshotsResponse{Snapshots: resp}}, nil
}

func (s *Server) handleCreateSnapshot(ctx context.Context, input *CreateSnapshotInput) (*SnapshotOutput, error) {
	snap, err := s.services.Snapshot.Create(ctx, input.Body.Description)
	if err != nil {
		return nil, err
	}
	return &SnapshotOutput{Body: snapshotToResponse(snap)}, nil
}

func (s *Server) handleGetSnapshot(ctx context.Context, input *GetSnapshotInput) (*SnapshotDetailOutput, error) {
	snap, err := s.services.Snapshot.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SnapshotDetailOutput{Body: snap}, nil
}

func (s *Server) handleDeleteSnapshot(ctx context.Context, input *GetSnapshotInput) (*struct{}, error) {
	if err := s.services.Snapshot.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleRestoreSnapshot(ctx context.Context, input *GetSnapshotInput) (*RestoreSnapshotOutput, error) {
	result, err := s.services.Snapshot.Restore(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RestoreSnapshotOutput{Body: *result}, nil
}

func (s *Server) handleListOperations(ctx context.Context, _ *struct{}) (*ListOperationsOutput, error) {
	ops, err := s.services.Snapshot.Operations(ctx)
	if err != nil {
		return nil, err
	}
	return &ListOperationsOutput{Body: ListOperationsResponse{Operations: ops}}, nil
}

func snapshotToResponse(snap *domain.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:            snap.ID,
		CreatedAt:     snap.CreatedAt,
		BookmarkCount: snap.BookmarkCount,
		Description:   snap.Description,
	}
}

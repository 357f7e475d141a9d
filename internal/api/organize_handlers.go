package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/service"
)

func (s *Server) registerOrganizeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "previewOrganize",
		Method:      http.MethodPost,
		Path:        "/api/v1/organize/preview",
		Summary:     "Preview reclassification",
		Description: "Classifies bookmarks in batches and returns the proposed changes without mutating anything; an optional id list narrows the selection",
		Tags:        []string{"Organize"},
	}, s.handlePreviewOrganize)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyOrganize",
		Method:      http.MethodPost,
		Path:        "/api/v1/organize/apply",
		Summary:     "Apply reclassification",
		Description: "Snapshots the tree, creates new folders, and moves bookmarks per the given change set",
		Tags:        []string{"Organize"},
	}, s.handleApplyOrganize)
}

// === DTOs ===

// PreviewOrganizeRequest optionally narrows the preview to a bookmark
// selection.
type PreviewOrganizeRequest struct {
	BookmarkIDs []string `json:"bookmark_ids,omitempty" doc:"Bookmarks to classify; empty selects the whole tree"`
}

// PreviewOrganizeInput wraps the preview request for Huma. The body is
// optional; previewing without one classifies everything.
type PreviewOrganizeInput struct {
	Body *PreviewOrganizeRequest `required:"false"`
}

// OrganizePreviewResponse contains proposed changes and the derived plan.
type OrganizePreviewResponse struct {
	Changes []domain.FolderClassification `json:"changes" doc:"Per-bookmark classification outcome"`
	Plan    service.OrganizePlan          `json:"plan" doc:"Folders to create and moves to perform"`
}

// OrganizePreviewOutput wraps the preview response for Huma.
type OrganizePreviewOutput struct {
	Body OrganizePreviewResponse
}

// ApplyOrganizeRequest carries the change set to apply, normally the
// preview output after user review.
type ApplyOrganizeRequest struct {
	Changes []domain.FolderClassification `json:"changes" doc:"Change set to apply"`
}

// ApplyOrganizeInput wraps the apply request for Huma.
type ApplyOrganizeInput struct {
	Body ApplyOrganizeRequest
}

// ApplyOrganizeOutput wraps the apply result for Huma.
type ApplyOrganizeOutput struct {
	Body service.OrganizeResult
}

// === Handlers ===

func (s *Server) handlePreviewOrganize(ctx context.Context, input *PreviewOrganizeInput) (*OrganizePreviewOutput, error) {
	var bookmarkIDs []string
	if input.Body != nil {
		bookmarkIDs = input.Body.BookmarkIDs
	}
	changes, err := s.services.Organize.Preview(ctx, bookmarkIDs)
	if err != nil {
		return nil, err
	}
	return &OrganizePreviewOutput{Body: OrganizePreviewResponse{
		Changes: changes,
		Plan:    service.Plan(changes),
	}}, nil
}

func (s *Server) handleApplyOrganize(ctx context.Context, input *ApplyOrganizeInput) (*ApplyOrganizeOutput, error) {
	result, err := s.services.Organize.Apply(ctx, input.Body.Changes)
	if err != nil {
		return nil, err
	}
	return &ApplyOrganizeOutput{Body: *result}, nil
}

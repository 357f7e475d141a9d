package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/service"
)

func (s *Server) registerCleanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "previewClean",
		Method:      http.MethodPost,
		Path:        "/api/v1/clean/preview",
		Summary:     "Preview clean",
		Description: "Scans for duplicate URLs and broken links and returns removal candidates",
		Tags:        []string{"Clean"},
	}, s.handlePreviewClean)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyClean",
		Method:      http.MethodPost,
		Path:        "/api/v1/clean/apply",
		Summary:     "Apply clean",
		Description: "Removes the confirmed bookmarks behind a fresh snapshot",
		Tags:        []string{"Clean"},
	}, s.handleApplyClean)
}

// === DTOs ===

// CleanPreviewResponse contains the removal candidates.
type CleanPreviewResponse struct {
	Candidates []service.CleanCandidate `json:"candidates" doc:"Bookmarks proposed for removal"`
}

// CleanPreviewOutput wraps the preview response for Huma.
type CleanPreviewOutput struct {
	Body CleanPreviewResponse
}

// ApplyCleanRequest carries the confirmed removals.
type ApplyCleanRequest struct {
	BookmarkIDs []string `json:"bookmark_ids" doc:"Bookmarks to remove"`
}

// ApplyCleanInput wraps the apply request for Huma.
type ApplyCleanInput struct {
	Body ApplyCleanRequest
}

// ApplyCleanOutput wraps the clean result for Huma.
type ApplyCleanOutput struct {
	Body service.CleanResult
}

// === Handlers ===

func (s *Server) handlePreviewClean(ctx context.Context, _ *struct{}) (*CleanPreviewOutput, error) {
	candidates, err := s.services.Clean.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return &CleanPreviewOutput{Body: CleanPreviewResponse{Candidates: candidates}}, nil
}

func (s *Server) handleApplyClean(ctx context.Context, input *ApplyCleanInput) (*ApplyCleanOutput, error) {
	result, err := s.services.Clean.Apply(ctx, input.Body.BookmarkIDs)
	if err != nil {
		return nil, err
	}
	return &ApplyCleanOutput{Body: *result}, nil
}

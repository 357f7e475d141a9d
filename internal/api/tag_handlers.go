package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags newest-first",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Deletes a tag regardless of its bookmark set",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "detachTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}/bookmarks/{bookmarkId}",
		Summary:       "Detach tag from bookmark",
		Description:   "Removes a bookmark from a tag; a tag left empty is deleted",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDetachTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmarkTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{id}/tags",
		Summary:     "Get bookmark tags",
		Description: "Returns the tags attached to a bookmark",
		Tags:        []string{"Tags"},
	}, s.handleGetBookmarkTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "tagBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{id}/tags",
		Summary:     "Tag bookmark",
		Description: "Attaches the named tags to a bookmark, creating tags that do not exist yet",
		Tags:        []string{"Tags"},
	}, s.handleTagBookmark)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID            string    `json:"id" doc:"Tag ID"`
	Name          string    `json:"name" doc:"Normalized tag name"`
	BookmarkCount int       `json:"bookmark_count" doc:"Bookmarks carrying this tag"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"Tags newest-first"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// TagIDInput addresses a tag by id.
type TagIDInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

// DetachTagInput addresses one bookmark on one tag.
type DetachTagInput struct {
	ID         string `path:"id" doc:"Tag ID"`
	BookmarkID string `path:"bookmarkId" doc:"Bookmark ID"`
}

// BookmarkTagsInput addresses a bookmark's tag set.
type BookmarkTagsInput struct {
	ID string `path:"id" doc:"Bookmark ID"`
}

// TagBookmarkRequest is the request body for tagging a bookmark.
type TagBookmarkRequest struct {
	Names []string `json:"names" minItems:"1" doc:"Tag names; normalized before storage"`
}

// TagBookmarkInput wraps the tagging request for Huma.
type TagBookmarkInput struct {
	ID   string `path:"id" doc:"Bookmark ID"`
	Body TagBookmarkRequest
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tagsToResponse(tags)}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*struct{}, error) {
	if err := s.services.Tag.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleDetachTag(ctx context.Context, input *DetachTagInput) (*struct{}, error) {
	if err := s.services.Tag.Detach(ctx, input.ID, input.BookmarkID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleGetBookmarkTags(ctx context.Context, input *BookmarkTagsInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.TagsFor(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tagsToResponse(tags)}}, nil
}

func (s *Server) handleTagBookmark(ctx context.Context, input *TagBookmarkInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.AddTags(ctx, input.ID, input.Body.Names)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tagsToResponse(tags)}}, nil
}

func tagsToResponse(tags []*domain.Tag) []TagResponse {
	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = TagResponse{
			ID:            t.ID,
			Name:          t.Name,
			BookmarkCount: len(t.BookmarkIDs),
			CreatedAt:     t.CreatedAt,
		}
	}
	return resp
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createNode",
		Method:        http.MethodPost,
		Path:          "/api/v1/bookmarks",
		Summary:       "Create node",
		Description:   "Creates a bookmark (URL set) or folder (URL empty) under the given parent",
		Tags:          []string{"Bookmarks"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "getChildren",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{id}/children",
		Summary:     "Get children",
		Description: "Returns the ordered direct children of a folder",
		Tags:        []string{"Bookmarks"},
	}, s.handleGetChildren)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveNode",
		Method:      http.MethodPatch,
		Path:        "/api/v1/bookmarks/{id}/move",
		Summary:     "Move node",
		Description: "Reparents a node. System containers cannot be moved",
		Tags:        []string{"Bookmarks"},
	}, s.handleMoveNode)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteNode",
		Method:        http.MethodDelete,
		Path:          "/api/v1/bookmarks/{id}",
		Summary:       "Delete node",
		Description:   "Deletes a bookmark or empty folder; set recursive to delete a whole subtree",
		Tags:          []string{"Bookmarks"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteNode)
}

// === DTOs ===

// CreateNodeRequest is the request body for creating a node.
type CreateNodeRequest struct {
	ParentID string `json:"parent_id" minLength:"1" doc:"Parent folder ID"`
	Title    string `json:"title,omitempty" doc:"Display title"`
	URL      string `json:"url,omitempty" doc:"Bookmark URL; empty creates a folder"`
}

// CreateNodeInput wraps the create node request for Huma.
type CreateNodeInput struct {
	Body CreateNodeRequest
}

// NodeOutput wraps a single node response for Huma.
type NodeOutput struct {
	Body *domain.BookmarkNode
}

// GetChildrenInput contains parameters for listing a folder's children.
type GetChildrenInput struct {
	ID string `path:"id" doc:"Folder ID"`
}

// ChildrenResponse contains a folder's direct children.
type ChildrenResponse struct {
	Children []*domain.BookmarkNode `json:"children" doc:"Ordered direct children"`
}

// ChildrenOutput wraps the children response for Huma.
type ChildrenOutput struct {
	Body ChildrenResponse
}

// MoveNodeRequest is the request body for moving a node.
type MoveNodeRequest struct {
	ParentID string `json:"parent_id" minLength:"1" doc:"New parent folder ID"`
}

// MoveNodeInput wraps the move request for Huma.
type MoveNodeInput struct {
	ID   string `path:"id" doc:"Node ID"`
	Body MoveNodeRequest
}

// DeleteNodeInput contains parameters for deleting a node.
type DeleteNodeInput struct {
	ID        string `path:"id" doc:"Node ID"`
	Recursive bool   `query:"recursive" doc:"Delete a folder with all its descendants"`
}

// === Handlers ===

func (s *Server) handleCreateNode(ctx context.Context, input *CreateNodeInput) (*NodeOutput, error) {
	node, err := s.store.Create(ctx, input.Body.ParentID, input.Body.Title, input.Body.URL)
	if err != nil {
		return nil, err
	}
	return &NodeOutput{Body: node}, nil
}

func (s *Server) handleGetChildren(ctx context.Context, input *GetChildrenInput) (*ChildrenOutput, error) {
	children, err := s.store.GetChildren(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ChildrenOutput{Body: ChildrenResponse{Children: children}}, nil
}

func (s *Server) handleMoveNode(ctx context.Context, input *MoveNodeInput) (*NodeOutput, error) {
	node, err := s.store.Move(ctx, input.ID, input.Body.ParentID)
	if err != nil {
		return nil, err
	}
	return &NodeOutput{Body: node}, nil
}

func (s *Server) handleDeleteNode(ctx context.Context, input *DeleteNodeInput) (*struct{}, error) {
	var err error
	if input.Recursive {
		err = s.store.RemoveSubtree(ctx, input.ID)
	} else {
		err = s.store.Remove(ctx, input.ID)
	}
	if err != nil {
		return nil, err
	}

	// A removed bookmark must not linger in any tag's set.
	if !input.Recursive {
		if err := s.services.Tag.RemoveBookmark(ctx, input.ID); err != nil {
			s.logger.Warn("failed to untag removed bookmark", "bookmark_id", input.ID, "error", err)
		}
	}
	return nil, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

func (s *Server) registerTreeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/tree",
		Summary:     "Get tree",
		Description: "Returns the full bookmark tree: the system containers with their subtrees",
		Tags:        []string{"Tree"},
	}, s.handleGetTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTreeStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/tree/stats",
		Summary:     "Get tree stats",
		Description: "Returns bookmark, folder, and depth counts over the tree",
		Tags:        []string{"Tree"},
	}, s.handleGetTreeStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFolders",
		Method:      http.MethodGet,
		Path:        "/api/v1/folders",
		Summary:     "List folders",
		Description: "Returns all user folders in tree order",
		Tags:        []string{"Tree"},
	}, s.handleListFolders)
}

// === DTOs ===

// TreeResponse contains the full bookmark tree.
type TreeResponse struct {
	Roots []*domain.BookmarkNode `json:"roots" doc:"System containers with their full subtrees"`
}

// TreeOutput wraps the tree response for Huma.
type TreeOutput struct {
	Body TreeResponse
}

// TreeStatsOutput wraps the tree stats response for Huma.
type TreeStatsOutput struct {
	Body domain.TreeStats
}

// FolderResponse describes one user folder.
type FolderResponse struct {
	ID       string `json:"id" doc:"Folder ID"`
	ParentID string `json:"parent_id" doc:"Parent node ID"`
	Title    string `json:"title" doc:"Display name"`
}

// ListFoldersResponse contains all user folders.
type ListFoldersResponse struct {
	Folders []FolderResponse `json:"folders" doc:"User folders in tree order"`
}

// ListFoldersOutput wraps the folder list for Huma.
type ListFoldersOutput struct {
	Body ListFoldersResponse
}

// === Handlers ===

func (s *Server) handleGetTree(ctx context.Context, _ *struct{}) (*TreeOutput, error) {
	roots, err := s.store.GetTree(ctx)
	if err != nil {
		return nil, err
	}
	return &TreeOutput{Body: TreeResponse{Roots: roots}}, nil
}

func (s *Server) handleGetTreeStats(ctx context.Context, _ *struct{}) (*TreeStatsOutput, error) {
	roots, err := s.store.GetTree(ctx)
	if err != nil {
		return nil, err
	}
	return &TreeStatsOutput{Body: tree.Stats(roots)}, nil
}

func (s *Server) handleListFolders(ctx context.Context, _ *struct{}) (*ListFoldersOutput, error) {
	roots, err := s.store.GetTree(ctx)
	if err != nil {
		return nil, err
	}

	folders := tree.UserFolders(roots)
	resp := make([]FolderResponse, len(folders))
	for i, f := range folders {
		resp[i] = FolderResponse{
			ID:       f.ID,
			ParentID: f.ParentID,
			Title:    f.Title,
		}
	}
	return &ListFoldersOutput{Body: ListFoldersResponse{Folders: resp}}, nil
}

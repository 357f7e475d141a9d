package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/markwiseapp/markwise-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search bookmarks",
		Description: "Full-text search over bookmark titles and URLs with folder, tag, and host filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Drops and rebuilds the search index from the full tree",
		Tags:        []string{"Search"},
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains search query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search query"`
	Folder string `query:"folder" doc:"Exact folder display name"`
	Tag    string `query:"tag" doc:"Exact normalized tag name"`
	Host   string `query:"host" doc:"Exact host for site-scoped search"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Results per page"`
	Offset int    `query:"offset" minimum:"0" doc:"Results to skip"`
	SortBy string `query:"sort" enum:"relevance,title,recent" doc:"Sort order"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.SearchResult
}

// ReindexResponse reports how many documents were indexed.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Documents written to the rebuilt index"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Folder = input.Folder
	params.Tag = input.Tag
	params.Host = input.Host
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*ReindexOutput, error) {
	indexed, err := s.search.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{Indexed: indexed}}, nil
}

// Package search provides full-text search over bookmarks using Bleve:
// title and URL matching with fuzzy and prefix fallbacks, plus folder
// and tag filters.
package search

import (
	"net/url"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index.
//
// Folder and tag names are denormalized into the document so a single
// query can filter on them without touching the store. The price is a
// reindex when a bookmark moves, which the store's async indexing hook
// absorbs.
type SearchDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Host      string   `json:"host"` // registrable host, for site: style filtering
	Folder    string   `json:"folder,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized) while the index
// mapping uses lowercase names, so the conversion is explicit.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"url":        d.URL,
		"host":       d.Host,
		"created_at": d.CreatedAt,
	}
	if d.Folder != "" {
		m["folder"] = d.Folder
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// BookmarkToSearchDocument converts a bookmark node to a SearchDocument.
// The containing folder name and tag names are provided by the caller;
// the search package does not depend on the store.
func BookmarkToSearchDocument(node *domain.BookmarkNode, folder string, tags []string) *SearchDocument {
	doc := &SearchDocument{
		ID:     node.ID,
		Title:  node.Title,
		URL:    node.URL,
		Folder: folder,
		Tags:   tags,
	}
	if !node.CreatedAt.IsZero() {
		doc.CreatedAt = node.CreatedAt.UnixMilli()
	}
	if u, err := url.Parse(node.URL); err == nil {
		doc.Host = u.Hostname()
	}
	return doc
}

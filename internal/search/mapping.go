package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for bookmark
// documents: stemmed full-text search on titles, lighter analysis on
// URLs, exact keyword matching for folder and tag filters, and a
// numeric timestamp for recency sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Title - primary search target, stemmed, highlighted.
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// URL - searchable without stemming; "github" should hit paths and
	// hosts alike.
	urlFieldMapping := bleve.NewTextFieldMapping()
	urlFieldMapping.Analyzer = simple.Name
	urlFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("url", urlFieldMapping)

	// Host - exact match for site-scoped queries.
	hostFieldMapping := bleve.NewTextFieldMapping()
	hostFieldMapping.Analyzer = keyword.Name
	hostFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("host", hostFieldMapping)

	// Folder - searchable and facetable by display name.
	folderFieldMapping := bleve.NewTextFieldMapping()
	folderFieldMapping.Analyzer = keyword.Name
	folderFieldMapping.Store = true
	folderFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("folder", folderFieldMapping)

	// Tags - normalized names, exact match.
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// ID - stored, not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Creation time - recency sorting.
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

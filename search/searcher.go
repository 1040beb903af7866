package search

import "context"

// Document is the indexed view of a single node.
type Document struct {
	ID         string
	Name       string
	Path       string
	MediaType  string
	Folder     bool
	Properties map[string][]string
}

// Searcher is the boundary to an external index. Queries are opaque to
// the caller; implementations document their own grammar.
type Searcher interface {
	// Index adds or replaces the document with the same id.
	Index(ctx context.Context, doc Document) error
	// Remove drops the document; unknown ids are ignored.
	Remove(ctx context.Context, id string) error
	// Search returns all matching documents ordered by path.
	Search(ctx context.Context, query string) ([]Document, error)
	// Reset drops every document.
	Reset(ctx context.Context) error
}

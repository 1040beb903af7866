package search

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/tidwall/btree"
)

// MemorySearcher keeps documents in memory and scans them on every query.
//
// Query grammar: whitespace separated terms, each either "field:pattern"
// or a bare pattern matched against the name. Fields are name, path,
// mediaType, type (file|folder) or any property name. Patterns use glob
// syntax ("*.txt", "report-?", "/docs/**"). All terms must match.
type MemorySearcher struct {
	mu sync.RWMutex

	docs  map[string]Document
	paths *btree.Map[string, string]
}

func NewMemorySearcher() *MemorySearcher {
	return &MemorySearcher{
		docs:  make(map[string]Document),
		paths: btree.NewMap[string, string](0),
	}
}

func (ms *MemorySearcher) Index(ctx context.Context, doc Document) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.removeUnsafe(doc.ID)

	doc.Properties = maps.Clone(doc.Properties)
	ms.docs[doc.ID] = doc
	ms.paths.Set(doc.Path+"\x00"+doc.ID, doc.ID)
	return nil
}

func (ms *MemorySearcher) Remove(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.removeUnsafe(id)
	return nil
}

func (ms *MemorySearcher) Search(ctx context.Context, raw string) ([]Document, error) {
	query, err := ParseQuery(raw)
	if err != nil {
		return nil, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var result []Document
	ms.paths.Scan(func(_ string, id string) bool {
		if err = ctx.Err(); err != nil {
			return false
		}

		doc := ms.docs[id]
		if query.Matches(doc) {
			doc.Properties = maps.Clone(doc.Properties)
			result = append(result, doc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (ms *MemorySearcher) Reset(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.docs = make(map[string]Document)
	ms.paths.Clear()
	return nil
}

// Len returns the number of indexed documents.
func (ms *MemorySearcher) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return len(ms.docs)
}

// Paths returns all indexed paths in order.
func (ms *MemorySearcher) Paths() []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	paths := make([]string, 0, len(ms.docs))
	for _, id := range ms.paths.Values() {
		paths = append(paths, ms.docs[id].Path)
	}
	return slices.Clip(paths)
}

// removeUnsafe drops id from both indexes.
// MUST be called while holding the write lock.
func (ms *MemorySearcher) removeUnsafe(id string) {
	doc, exists := ms.docs[id]
	if !exists {
		return
	}

	ms.paths.Delete(doc.Path + "\x00" + doc.ID)
	delete(ms.docs, id)
}

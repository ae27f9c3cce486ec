package repository

import (
	"context"
	"sync"

	"github.com/gogotex/cocktails/internal/document"
	"github.com/gogotex/cocktails/internal/pipeline"
)

// MemoryRepo is an in-process document store keyed by collection name. It is
// used by tests, the demo command without a database, and as the reference
// behaviour the other stores are checked against.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string][]document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string][]document.Document)}
}

// Insert appends docs to collection in order.
func (m *MemoryRepo) Insert(ctx context.Context, collection string, docs ...document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.store[collection] = append(m.store[collection], withID(d))
	}
	return nil
}

// Fetch streams a snapshot of collection in insertion order. Writes made
// after Fetch returns are not visible to the stream. An unknown collection is
// empty.
func (m *MemoryRepo) Fetch(ctx context.Context, collection string, filter pipeline.Predicate) (pipeline.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	src := m.store[collection]
	snapshot := make([]document.Document, len(src))
	copy(snapshot, src)
	m.mu.RUnlock()
	return pipeline.Filter(pipeline.FromSlice(snapshot), filter), nil
}

// Count returns the number of documents in collection.
func (m *MemoryRepo) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store[collection])
}

// Drop removes collection. Dropping an unknown collection is not an error.
func (m *MemoryRepo) Drop(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, collection)
	return nil
}

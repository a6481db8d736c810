package store

import (
	"sync"

	"revault/internal/rv"
)

// MemoryStore is an in-memory implementation of the DocumentStore
// interface. Documents are deep-copied on the way in and out so callers
// never alias stored state. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*rv.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*rv.Document)}
}

// Read returns a copy of the stored document for uid, or an empty
// document if none has been written.
func (m *MemoryStore) Read(uid string) (*rv.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[uid]
	if !ok {
		return rv.NewDocument(), nil
	}
	return doc.Clone(), nil
}

// Write replaces the stored document for uid with a copy of doc.
func (m *MemoryStore) Write(uid string, doc *rv.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[uid] = doc.Clone()
	return nil
}

// Compile-time check that MemoryStore implements rv.DocumentStore.
var _ rv.DocumentStore = (*MemoryStore)(nil)

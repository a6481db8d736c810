// Package store provides DocumentStore implementations: a filesystem
// store persisting one JSON file per user, and an in-memory store for
// tests and embedding.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"revault/internal/rv"
)

// JSONStore persists each user's document as <root>/<uid>.json.
// Writes go to a temp file in the same directory followed by an atomic
// rename, so readers see either the old or the new document and a crash
// mid-write leaves the old file intact.
type JSONStore struct {
	root string
}

// NewJSONStore creates a store rooted at the given directory, creating
// it if needed.
func NewJSONStore(root string) (*JSONStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &JSONStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *JSONStore) Root() string { return s.root }

func (s *JSONStore) documentPath(uid string) string {
	return filepath.Join(s.root, uid+".json")
}

// Read returns the stored document for uid, or an empty document if the
// user has no file yet. No locking; callers decide.
func (s *JSONStore) Read(uid string) (*rv.Document, error) {
	data, err := os.ReadFile(s.documentPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return rv.NewDocument(), nil
		}
		return nil, fmt.Errorf("reading document for %q: %w", uid, err)
	}

	doc := rv.NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing document for %q: %w", uid, err)
	}
	return doc, nil
}

// Write serializes doc and atomically replaces the user's file.
func (s *JSONStore) Write(uid string, doc *rv.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document for %q: %w", uid, err)
	}

	// Temp file in the same directory so the rename stays on one
	// filesystem and is atomic.
	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.documentPath(uid)); err != nil {
		return fmt.Errorf("replacing document for %q: %w", uid, err)
	}

	success = true
	return nil
}

// Compile-time check that JSONStore implements rv.DocumentStore.
var _ rv.DocumentStore = (*JSONStore)(nil)

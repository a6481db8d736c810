// Package testutil provides shared helpers for constructing services
// over the memory and filesystem backends in tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"revault/internal/audit"
	"revault/internal/lock"
	"revault/internal/rv"
	"revault/internal/store"
)

// testLockTimeout is generous so lock contention in tests never turns
// into spurious timeouts.
const testLockTimeout = 5 * time.Second

// NewMemoryService returns a ResourceService over memory backends,
// plus the backends for inspection.
func NewMemoryService(t *testing.T) (*rv.ResourceService, *store.MemoryStore, *audit.MemoryLog) {
	t.Helper()

	validator, err := rv.NewValidator("")
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	st := store.NewMemoryStore()
	al := audit.NewMemoryLog()
	svc := rv.NewResourceService(validator, st, lock.NewMemoryLocker(), al, rv.NewNopLogger(), rv.RandomTokenSource{}, testLockTimeout)
	return svc, st, al
}

// NewFileService returns a ResourceService rooted at a fresh temp dir,
// plus that root directory.
func NewFileService(t *testing.T) (*rv.ResourceService, string) {
	t.Helper()

	root := t.TempDir()
	st, err := store.NewJSONStore(root)
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	locker, err := lock.NewFileLocker(root)
	if err != nil {
		t.Fatalf("NewFileLocker() error = %v", err)
	}
	validator, err := rv.NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	al := audit.NewFileLog(filepath.Join(root, "audit.log"), locker, testLockTimeout)
	svc := rv.NewResourceService(validator, st, locker, al, rv.NewNopLogger(), rv.RandomTokenSource{}, testLockTimeout)
	return svc, root
}

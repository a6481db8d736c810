// Package lock provides advisory Locker implementations: sentinel lock
// files shared across processes, and an in-process variant for tests
// and single-process embedding.
//
// Known limitation: a holder that crashes leaves its marker file behind
// and every later Acquire for that key times out until the marker is
// removed by hand. The Locker seam is where OS advisory locks that
// auto-release on process death could be swapped in.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"revault/internal/rv"
)

// pollInterval is the sleep between acquisition retries.
const pollInterval = time.Millisecond

// FileLocker implements rv.Locker with zero-byte marker files named
// <key>.lock in one directory. A marker is present iff the lock is
// held.
type FileLocker struct {
	dir string
}

// NewFileLocker creates a FileLocker using the given directory for
// marker files, creating it if needed.
func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	return &FileLocker{dir: dir}, nil
}

func (l *FileLocker) markerPath(key string) string {
	return filepath.Join(l.dir, key+".lock")
}

// Acquire atomically creates the marker for key, retrying until timeout
// elapses.
func (l *FileLocker) Acquire(key string, timeout time.Duration) (rv.Guard, error) {
	marker := l.markerPath(key)
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.Close()
			return &fileGuard{path: marker}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lock marker for %q: %w", key, err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock %q still held after %v: %w", key, timeout, rv.ErrLockTimeout)
		}
		time.Sleep(pollInterval)
	}
}

// WaitUntilClear polls for the marker's absence up to timeout, then
// returns either way.
func (l *FileLocker) WaitUntilClear(key string, timeout time.Duration) {
	marker := l.markerPath(key)
	deadline := time.Now().Add(timeout)

	for {
		if _, err := os.Stat(marker); os.IsNotExist(err) {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(pollInterval)
	}
}

// fileGuard removes the marker on release. Removal tolerates the marker
// already being gone.
type fileGuard struct {
	path string
	once sync.Once
}

func (g *fileGuard) Release() {
	g.once.Do(func() {
		os.Remove(g.path)
	})
}

// Compile-time check that FileLocker implements rv.Locker.
var _ rv.Locker = (*FileLocker)(nil)

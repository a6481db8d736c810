package lock

import (
	"fmt"
	"sync"
	"time"

	"revault/internal/rv"
)

// MemoryLocker implements rv.Locker with an in-process set of held
// keys. It mirrors FileLocker's retry-until-deadline behavior so tests
// exercise the same semantics without the filesystem.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (l *MemoryLocker) tryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false
	}
	l.held[key] = true
	return true
}

func (l *MemoryLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

func (l *MemoryLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

// Acquire takes the lock named key, retrying until timeout elapses.
func (l *MemoryLocker) Acquire(key string, timeout time.Duration) (rv.Guard, error) {
	deadline := time.Now().Add(timeout)

	for {
		if l.tryAcquire(key) {
			return &memoryGuard{locker: l, key: key}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock %q still held after %v: %w", key, timeout, rv.ErrLockTimeout)
		}
		time.Sleep(pollInterval)
	}
}

// WaitUntilClear polls for the key's release up to timeout, then
// returns either way.
func (l *MemoryLocker) WaitUntilClear(key string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)

	for {
		if !l.isHeld(key) {
			return
		}
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(pollInterval)
	}
}

type memoryGuard struct {
	locker *MemoryLocker
	key    string
	once   sync.Once
}

func (g *memoryGuard) Release() {
	g.once.Do(func() {
		g.locker.release(g.key)
	})
}

// Compile-time check that MemoryLocker implements rv.Locker.
var _ rv.Locker = (*MemoryLocker)(nil)

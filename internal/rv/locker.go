package rv

import "time"

// Guard releases a held lock. Release must be called on every exit path
// and tolerates the lock already being gone; calling it more than once
// is safe.
type Guard interface {
	Release()
}

// Locker provides advisory mutual exclusion keyed by name. Keys are
// user ids for per-user locks plus one global key for the audit log.
// Locks are cooperative: they only exclude participants that honor
// them.
type Locker interface {
	// Acquire takes the exclusive lock named key, retrying until
	// timeout elapses. Exceeding the bound fails with ErrLockTimeout.
	Acquire(key string, timeout time.Duration) (Guard, error)

	// WaitUntilClear polls for the absence of the lock named key for at
	// most timeout, then returns either way. It is a courtesy wait for
	// readers, not a correctness mechanism: atomic document replacement
	// is what rules out torn reads.
	WaitUntilClear(key string, timeout time.Duration)
}

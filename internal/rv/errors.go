// Package rv defines the core types, interfaces and sentinel errors of
// the revisioned resource store, plus the ResourceService facade that
// composes them. Callers match error kinds with errors.Is.
package rv

import "errors"

var (
	// ErrInvalidArgument marks a malformed user id or resource name
	// (empty, contains a path separator, wrong suffix, oversized).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied marks a document path that resolves outside
	// the storage root (symlink or traversal attempt).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyExists marks a create on a slug the user already has.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound marks an operation on a missing resource or revision.
	ErrNotFound = errors.New("not found")

	// ErrLockTimeout marks a lock that could not be acquired within the
	// configured bound.
	ErrLockTimeout = errors.New("lock timeout")
)

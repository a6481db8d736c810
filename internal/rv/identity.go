package rv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// resourceSuffix is the required file extension for resource names.
	resourceSuffix = ".txt"

	// maxNameBytes is the UTF-8 length cap for a normalized name.
	maxNameBytes = 255
)

// Validator checks user ids and resource names before any lock is taken
// or file touched. A Validator with a storage root additionally rejects
// user ids whose document path would resolve outside that root.
type Validator struct {
	root string
}

// NewValidator creates a Validator for the given storage root. The root
// must exist; it is resolved to its canonical path once so later
// containment checks compare resolved paths. An empty root disables the
// containment check (used with non-filesystem stores).
func NewValidator(root string) (*Validator, error) {
	if root == "" {
		return &Validator{}, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	return &Validator{root: resolved}, nil
}

// CheckUserID validates a user id. It fails with ErrInvalidArgument for
// an empty id or one containing a path separator, and with
// ErrPermissionDenied if the user's document path would escape the
// storage root (for example through a planted symlink). It has no side
// effects.
func (v *Validator) CheckUserID(uid string) error {
	if uid == "" || strings.ContainsRune(uid, os.PathSeparator) || strings.ContainsRune(uid, '/') {
		return fmt.Errorf("user id %q: %w", uid, ErrInvalidArgument)
	}
	if v.root == "" {
		return nil
	}

	candidate := filepath.Join(v.root, uid+".json")
	if filepath.Dir(candidate) != v.root {
		return fmt.Errorf("user id %q escapes storage root: %w", uid, ErrPermissionDenied)
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		if os.IsNotExist(err) {
			// No document yet; the lexical check above suffices.
			return nil
		}
		return fmt.Errorf("resolving document path for %q: %w", uid, err)
	}
	if !strings.HasPrefix(resolved, v.root+string(os.PathSeparator)) {
		return fmt.Errorf("document path for %q escapes storage root: %w", uid, ErrPermissionDenied)
	}
	return nil
}

// CheckResourceName validates a resource name and returns its NFC
// normalized form along with the case-folded slug used as the document
// map key. The suffix check is case-insensitive ("note.TXT" collides
// with "note.txt", so it must be accepted); the length cap applies to
// the normalized name.
func (v *Validator) CheckResourceName(name string) (normalized, slug string, err error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return "", "", fmt.Errorf("resource name %q: %w", name, ErrInvalidArgument)
	}
	normalized = norm.NFC.String(name)
	if len(normalized) > maxNameBytes {
		return "", "", fmt.Errorf("resource name exceeds %d bytes: %w", maxNameBytes, ErrInvalidArgument)
	}
	slug = cases.Fold().String(normalized)
	if !strings.HasSuffix(slug, resourceSuffix) {
		return "", "", fmt.Errorf("resource name %q must end with %s: %w", name, resourceSuffix, ErrInvalidArgument)
	}
	return normalized, slug, nil
}

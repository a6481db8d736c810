package lock

import (
	"fmt"

	"revault/internal/config"
	"revault/internal/rv"
)

// NewLockerFromConfig creates a Locker based on the lock config type.
// dir is the service root directory where the file locker keeps its
// markers.
func NewLockerFromConfig(cfg config.LockConfig, dir string) (rv.Locker, error) {
	switch cfg.Type {
	case "file", "":
		return NewFileLocker(dir)
	case "memory":
		return NewMemoryLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock type: %q", cfg.Type)
	}
}

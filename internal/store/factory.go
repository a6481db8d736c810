package store

import (
	"fmt"

	"revault/internal/config"
	"revault/internal/rv"
)

// NewStoreFromConfig creates a DocumentStore based on the store config
// type. root is the service root directory used by the filesystem
// store.
func NewStoreFromConfig(cfg config.StoreConfig, root string) (rv.DocumentStore, error) {
	switch cfg.Type {
	case "filesystem", "":
		return NewJSONStore(root)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %q", cfg.Type)
	}
}

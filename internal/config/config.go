// Package config handles reading and writing the rv configuration
// file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for rv. One config describes
// one service instance: its root directory is an independent storage
// and lock namespace.
type Config struct {
	InstanceID    string      `toml:"instance_id"`
	RootDir       string      `toml:"root_dir"`
	LogDir        string      `toml:"log_dir"`
	LockTimeoutMS int64       `toml:"lock_timeout_ms"`
	Store         StoreConfig `toml:"store"`
	Lock          LockConfig  `toml:"lock"`
	Seal          SealConfig  `toml:"seal"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Type string `toml:"type"` // "filesystem" (default) or "memory"
}

// LockConfig selects the locking backend.
type LockConfig struct {
	Type string `toml:"type"` // "file" (default) or "memory"
}

// SealConfig holds paths to the age key pair used to seal audit-log
// exports.
type SealConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with the provided values and default
// paths under baseDir.
func NewConfig(instanceID, baseDir string) *Config {
	return &Config{
		InstanceID:    instanceID,
		RootDir:       filepath.Join(baseDir, "data"),
		LogDir:        filepath.Join(baseDir, "log"),
		LockTimeoutMS: 200,
		Seal: SealConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "rv.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "rv.key"),
		},
	}
}

// LockTimeout returns the configured lock bound as a duration; zero or
// negative values mean "use the service default".
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Package app is the application layer between the CLI and the
// ResourceService. It constructs all dependencies from config, exposes
// the service operations plus audit export, and manages the log
// lifecycle on Close.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"revault/internal/audit"
	"revault/internal/config"
	"revault/internal/lock"
	"revault/internal/rv"
	"revault/internal/seal"
	"revault/internal/store"
)

// App wires a ResourceService and its sealer from configuration.
// The caller must call Close when done.
type App struct {
	cfg       *config.Config
	service   *rv.ResourceService
	sealer    seal.Sealer
	auditPath string
	logger    *slog.Logger
	logFile   *os.File
}

// New creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "CreateResource") and tags
// every log record of this invocation.
func New(cfg *config.Config, operation string) (*App, error) {
	opID := uuid.New().String()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(cfg.RootDir, 0755); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating root directory: %w", err)
	}

	// The containment check only applies when documents live on disk.
	validatorRoot := cfg.RootDir
	if cfg.Store.Type == "memory" {
		validatorRoot = ""
	}
	validator, err := rv.NewValidator(validatorRoot)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating validator: %w", err)
	}

	locker, err := lock.NewLockerFromConfig(cfg.Lock, cfg.RootDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating locker: %w", err)
	}

	st, err := store.NewStoreFromConfig(cfg.Store, cfg.RootDir)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	auditPath := filepath.Join(cfg.RootDir, "audit.log")
	auditLog := audit.NewFileLog(auditPath, locker, cfg.LockTimeout())

	sealer, err := seal.NewSealerFromConfig(cfg.Seal)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	service := rv.NewResourceService(validator, st, locker, auditLog, &slogAdapter{l: logger}, rv.RandomTokenSource{}, cfg.LockTimeout())

	logger.Debug("operation started", "operation", operation)

	return &App{
		cfg:       cfg,
		service:   service,
		sealer:    sealer,
		auditPath: auditPath,
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// Service exposes the underlying ResourceService.
func (a *App) Service() *rv.ResourceService { return a.service }

// CreateResource creates a resource and returns the new revision id.
func (a *App) CreateResource(user, name, content string) (string, error) {
	return a.service.CreateResource(user, name, content)
}

// ReadResource returns a resource's text; an empty rev selects the
// latest revision.
func (a *App) ReadResource(user, name, rev string) (string, error) {
	return a.service.ReadResource(user, name, rev)
}

// UpdateResource appends a new revision and returns its id.
func (a *App) UpdateResource(user, name, content string) (string, error) {
	return a.service.UpdateResource(user, name, content)
}

// DeleteResource removes a resource and all its revisions.
func (a *App) DeleteResource(user, name string) error {
	return a.service.DeleteResource(user, name)
}

// ListResources returns the user's resource names in document order.
func (a *App) ListResources(user string) ([]string, error) {
	return a.service.ListResources(user)
}

// ListRevisions returns a resource's revision ids in creation order.
func (a *App) ListRevisions(user, name string) ([]string, error) {
	return a.service.ListRevisions(user, name)
}

// VerifyAudit replays the audit chain and reports whether it is intact.
func (a *App) VerifyAudit() (bool, error) {
	return a.service.VerifyAuditLog()
}

// SetupSeal generates the key pair used to seal audit exports.
func (a *App) SetupSeal(passphrase string) error {
	if err := a.sealer.Setup(passphrase); err != nil {
		return err
	}
	a.logger.Info("seal keys initialized")
	return nil
}

// ExportAudit writes a sealed copy of the audit log to outPath. The log
// itself is only read.
func (a *App) ExportAudit(outPath string) error {
	if !a.sealer.IsConfigured() {
		return fmt.Errorf("seal keys not initialized (run: rv seal init)")
	}

	in, err := os.Open(a.auditPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no audit log to export")
		}
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer out.Close()

	if err := a.sealer.Seal(in, out); err != nil {
		return fmt.Errorf("sealing audit log: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	a.logger.Info("audit log exported", "path", outPath)
	return nil
}

// OpenAudit decrypts a sealed export from inPath into w.
func (a *App) OpenAudit(passphrase, inPath string, w io.Writer) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening export file: %w", err)
	}
	defer in.Close()

	if err := a.sealer.Unseal(passphrase, in, w); err != nil {
		return fmt.Errorf("unsealing export: %w", err)
	}
	return nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

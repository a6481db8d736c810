package audit

import (
	"fmt"
	"os"
	"time"

	"revault/internal/rv"
)

// lockKey is the Locker key guarding appends across all users.
const lockKey = "audit"

// FileLog is the file-backed AuditLog. Appends are serialized
// process-wide by the audit lock; verification takes no lock because
// the log is append-only and a reader racing an append at worst sees
// the previous end of the chain.
type FileLog struct {
	path    string
	locker  rv.Locker
	timeout time.Duration
}

// NewFileLog creates a FileLog writing to path, serializing appends
// through locker. A non-positive timeout falls back to
// rv.DefaultLockTimeout.
func NewFileLog(path string, locker rv.Locker, timeout time.Duration) *FileLog {
	if timeout <= 0 {
		timeout = rv.DefaultLockTimeout
	}
	return &FileLog{path: path, locker: locker, timeout: timeout}
}

// Append records one event under the audit lock, chaining its hash to
// the log's current last line.
func (l *FileLog) Append(event rv.Event) error {
	guard, err := l.locker.Acquire(lockKey, l.timeout)
	if err != nil {
		return err
	}
	defer guard.Release()

	prev, err := l.lastLine()
	if err != nil {
		return err
	}

	payload, err := canonicalEvent(event)
	if err != nil {
		return err
	}
	line, err := encodeRecord(Record{Hash: chainHash(prev, payload), Event: event})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("appending audit record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing audit log: %w", err)
	}
	return nil
}

// Verify replays the whole chain. A missing or empty log verifies true.
func (l *FileLog) Verify() (bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("reading audit log: %w", err)
	}
	return verifyLines(splitLines(data)), nil
}

// lastLine returns the raw bytes of the log's last physical line, or
// nil if the log is empty or absent.
func (l *FileLog) lastLine() ([]byte, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	lines := splitLines(data)
	if len(lines) == 0 {
		return nil, nil
	}
	return lines[len(lines)-1], nil
}

// Compile-time check that FileLog implements rv.AuditLog.
var _ rv.AuditLog = (*FileLog)(nil)

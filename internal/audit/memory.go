package audit

import (
	"sync"

	"revault/internal/rv"
)

// MemoryLog is an in-memory AuditLog keeping the same physical-line
// chain as FileLog. Useful for tests and embedding. Safe for concurrent
// use.
type MemoryLog struct {
	mu    sync.Mutex
	lines [][]byte
}

// NewMemoryLog creates an empty in-memory audit log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records one event, chaining to the last stored line.
func (m *MemoryLog) Append(event rv.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var prev []byte
	if len(m.lines) > 0 {
		prev = m.lines[len(m.lines)-1]
	}

	payload, err := canonicalEvent(event)
	if err != nil {
		return err
	}
	line, err := encodeRecord(Record{Hash: chainHash(prev, payload), Event: event})
	if err != nil {
		return err
	}
	m.lines = append(m.lines, line)
	return nil
}

// Verify replays the stored chain.
func (m *MemoryLog) Verify() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return verifyLines(m.lines), nil
}

// Events returns the recorded events in append order.
func (m *MemoryLog) Events() ([]rv.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]rv.Event, 0, len(m.lines))
	for _, line := range m.lines {
		rec, err := decodeRecord(line)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Event)
	}
	return out, nil
}

// Compile-time check that MemoryLog implements rv.AuditLog.
var _ rv.AuditLog = (*MemoryLog)(nil)

// Package audit implements the tamper-evident, hash-chained audit log.
//
// Every successful mutation is recorded as one JSON line
// {"hash": ..., "event": ...} where hash is the SHA-256 of the previous
// physical line's exact bytes concatenated with the canonical event
// JSON. Editing, deleting or reordering any historical line breaks
// every hash appended after it. The chain detects retroactive tampering
// but cannot prevent it.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"revault/internal/rv"
)

// Record is one physical line of the log.
type Record struct {
	Hash  string   `json:"hash"`
	Event rv.Event `json:"event"`
}

// canonicalEvent returns the canonical serialization of an event:
// compact JSON, HTML escaping off, fields in lexicographic order (the
// declaration order of rv.Event). Appender and verifier must produce
// these bytes identically or verification spuriously fails.
func canonicalEvent(e rv.Event) ([]byte, error) {
	return encodeCompact(e)
}

// encodeRecord returns the physical line for a record, without the
// trailing newline.
func encodeRecord(rec Record) ([]byte, error) {
	return encodeCompact(rec)
}

// decodeRecord parses one physical line back into a Record.
func decodeRecord(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing audit record: %w", err)
	}
	return rec, nil
}

func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// chainHash computes the hash committing to the previous physical line
// and the canonical event payload. The first record chains from an
// empty previous line.
func chainHash(prevLine, payload []byte) string {
	h := sha256.New()
	h.Write(prevLine)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// verifyLines replays the chain over raw physical lines. Any hash
// mismatch or unparseable line (including a truncated trailing append)
// fails verification immediately.
func verifyLines(lines [][]byte) bool {
	prev := []byte(nil)
	for _, line := range lines {
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return false
		}
		payload, err := canonicalEvent(rec.Event)
		if err != nil {
			return false
		}
		if rec.Hash != chainHash(prev, payload) {
			return false
		}
		prev = line
	}
	return true
}

// splitLines breaks log file contents into physical lines, dropping
// only the empty element a trailing newline produces. An interior empty
// line is kept and fails verification as tampering.
func splitLines(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}
	lines := bytes.Split(data, []byte{'\n'})
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

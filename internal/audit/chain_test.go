package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"revault/internal/rv"
)

func TestCanonicalEvent(t *testing.T) {
	t.Run("fields are lexicographic and compact", func(t *testing.T) {
		got, err := canonicalEvent(rv.Event{Action: rv.ActionCreate, Resource: "note.txt", Rev: "abc123", User: "alice"})
		if err != nil {
			t.Fatalf("canonicalEvent() error = %v", err)
		}
		want := `{"action":"create","resource":"note.txt","rev":"abc123","user":"alice"}`
		if string(got) != want {
			t.Errorf("canonicalEvent() = %s, want %s", got, want)
		}
	})

	t.Run("rev is omitted for delete events", func(t *testing.T) {
		got, err := canonicalEvent(rv.Event{Action: rv.ActionDelete, Resource: "note.txt", User: "alice"})
		if err != nil {
			t.Fatalf("canonicalEvent() error = %v", err)
		}
		want := `{"action":"delete","resource":"note.txt","user":"alice"}`
		if string(got) != want {
			t.Errorf("canonicalEvent() = %s, want %s", got, want)
		}
	})

	t.Run("html characters are not escaped", func(t *testing.T) {
		got, err := canonicalEvent(rv.Event{Action: rv.ActionCreate, Resource: "a&b.txt", Rev: "r", User: "u<v"})
		if err != nil {
			t.Fatalf("canonicalEvent() error = %v", err)
		}
		want := `{"action":"create","resource":"a&b.txt","rev":"r","user":"u<v"}`
		if string(got) != want {
			t.Errorf("canonicalEvent() = %s, want %s", got, want)
		}
	})
}

func TestChainHash(t *testing.T) {
	payload := []byte(`{"action":"create","resource":"note.txt","rev":"r1","user":"alice"}`)

	// First record chains from an empty previous line.
	sum := sha256.Sum256(payload)
	if got := chainHash(nil, payload); got != hex.EncodeToString(sum[:]) {
		t.Errorf("chainHash(nil, payload) = %s, want plain sha256 of payload", got)
	}

	prev := []byte(`{"hash":"x","event":{}}`)
	sum2 := sha256.Sum256(append(append([]byte{}, prev...), payload...))
	if got := chainHash(prev, payload); got != hex.EncodeToString(sum2[:]) {
		t.Errorf("chainHash(prev, payload) = %s, want sha256(prev||payload)", got)
	}
}

func TestVerifyLines(t *testing.T) {
	event := rv.Event{Action: rv.ActionCreate, Resource: "note.txt", Rev: "r1", User: "alice"}
	payload, err := canonicalEvent(event)
	if err != nil {
		t.Fatalf("canonicalEvent() error = %v", err)
	}
	line, err := encodeRecord(Record{Hash: chainHash(nil, payload), Event: event})
	if err != nil {
		t.Fatalf("encodeRecord() error = %v", err)
	}

	if !verifyLines(nil) {
		t.Error("verifyLines(nil) = false, want true (vacuous)")
	}
	if !verifyLines([][]byte{line}) {
		t.Error("verifyLines(valid line) = false, want true")
	}
	if verifyLines([][]byte{[]byte(`{"hash":"bogus","event":` + string(payload) + `}`)}) {
		t.Error("verifyLines(wrong hash) = true, want false")
	}
	if verifyLines([][]byte{line[:len(line)-5]}) {
		t.Error("verifyLines(truncated line) = true, want false")
	}
	if verifyLines([][]byte{line, {}}) {
		t.Error("verifyLines(interior empty line) = true, want false")
	}
}

func TestSplitLines(t *testing.T) {
	if got := splitLines(nil); got != nil {
		t.Errorf("splitLines(nil) = %v, want nil", got)
	}
	if got := splitLines([]byte("a\nb\n")); len(got) != 2 {
		t.Errorf("splitLines with trailing newline: %d lines, want 2", len(got))
	}
	// A truncated trailing append has no newline; the partial line must
	// be kept so verification sees it.
	if got := splitLines([]byte("a\nb\n{\"hash")); len(got) != 3 {
		t.Errorf("splitLines with truncated tail: %d lines, want 3", len(got))
	}
}

package store

import (
	"testing"

	"revault/internal/rv"
)

func TestMemoryStore_ReadMissingUser(t *testing.T) {
	s := NewMemoryStore()

	doc, err := s.Read("alice")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", doc.Len())
	}
}

func TestMemoryStore_WriteReadRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Write("alice", sampleDocument()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	doc, err := s.Read("alice")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	res, ok := doc.Get("note.txt")
	if !ok {
		t.Fatal("Get(\"note.txt\") not found")
	}
	if len(res.Revs) != 2 {
		t.Errorf("len(Revs) = %d, want 2", len(res.Revs))
	}
}

func TestMemoryStore_CallersNeverAliasStoredState(t *testing.T) {
	s := NewMemoryStore()

	original := sampleDocument()
	if err := s.Write("alice", original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Mutating the document we wrote must not change the store.
	res, _ := original.Get("note.txt")
	res.Revs = append(res.Revs, rv.Revision{ID: "zzzz", Text: "sneak"})

	doc, err := s.Read("alice")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got, _ := doc.Get("note.txt")
	if len(got.Revs) != 2 {
		t.Errorf("len(Revs) = %d after external mutation, want 2", len(got.Revs))
	}

	// Mutating a read result must not change the store either.
	got.Revs[0].Text = "tampered"
	doc2, _ := s.Read("alice")
	again, _ := doc2.Get("note.txt")
	if again.Revs[0].Text != "first" {
		t.Errorf("Text = %q after mutating a read copy, want %q", again.Revs[0].Text, "first")
	}
}

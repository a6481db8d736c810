package rv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newRootValidator(t *testing.T) (*Validator, string) {
	t.Helper()
	root := t.TempDir()
	v, err := NewValidator(root)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v, root
}

func TestValidator_CheckUserID(t *testing.T) {
	v, _ := newRootValidator(t)

	t.Run("accepts plain ids", func(t *testing.T) {
		for _, uid := range []string{"alice", "bob-2", "user_01", ".."} {
			if err := v.CheckUserID(uid); err != nil {
				t.Errorf("CheckUserID(%q) error = %v, want nil", uid, err)
			}
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		if err := v.CheckUserID(""); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("CheckUserID(\"\") error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("rejects path separators", func(t *testing.T) {
		for _, uid := range []string{"a/b", "/alice", "../../etc"} {
			if err := v.CheckUserID(uid); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("CheckUserID(%q) error = %v, want ErrInvalidArgument", uid, err)
			}
		}
	})

	t.Run("no side effects", func(t *testing.T) {
		v, root := newRootValidator(t)
		if err := v.CheckUserID("carol"); err != nil {
			t.Fatalf("CheckUserID() error = %v", err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("storage root has %d entries after validation, want 0", len(entries))
		}
	})
}

func TestValidator_CheckUserID_SymlinkEscape(t *testing.T) {
	v, root := newRootValidator(t)

	outside := t.TempDir()
	target := filepath.Join(outside, "victim.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Symlink(target, filepath.Join(root, "mallory.json")); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}

	if err := v.CheckUserID("mallory"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("CheckUserID(\"mallory\") error = %v, want ErrPermissionDenied", err)
	}

	// A symlink staying inside the root is allowed.
	inside := filepath.Join(root, "real.json")
	if err := os.WriteFile(inside, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Symlink(inside, filepath.Join(root, "alias.json")); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}
	if err := v.CheckUserID("alias"); err != nil {
		t.Errorf("CheckUserID(\"alias\") error = %v, want nil", err)
	}
}

func TestValidator_CheckUserID_NoRoot(t *testing.T) {
	v, err := NewValidator("")
	if err != nil {
		t.Fatalf("NewValidator(\"\") error = %v", err)
	}
	if err := v.CheckUserID("anyone"); err != nil {
		t.Errorf("CheckUserID() error = %v, want nil", err)
	}
	if err := v.CheckUserID("a/b"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("CheckUserID(\"a/b\") error = %v, want ErrInvalidArgument", err)
	}
}

func TestValidator_CheckResourceName(t *testing.T) {
	v, _ := newRootValidator(t)

	t.Run("returns normalized name and folded slug", func(t *testing.T) {
		name, slug, err := v.CheckResourceName("Note.txt")
		if err != nil {
			t.Fatalf("CheckResourceName() error = %v", err)
		}
		if name != "Note.txt" {
			t.Errorf("normalized = %q, want %q", name, "Note.txt")
		}
		if slug != "note.txt" {
			t.Errorf("slug = %q, want %q", slug, "note.txt")
		}
	})

	t.Run("applies NFC normalization", func(t *testing.T) {
		// "café.txt" with a decomposed e + combining acute.
		decomposed := "café.txt"
		precomposed := "café.txt"

		name, slug, err := v.CheckResourceName(decomposed)
		if err != nil {
			t.Fatalf("CheckResourceName() error = %v", err)
		}
		if name != precomposed {
			t.Errorf("normalized = %q, want %q", name, precomposed)
		}

		_, slug2, err := v.CheckResourceName("CafÉ.txt")
		if err != nil {
			t.Fatalf("CheckResourceName() error = %v", err)
		}
		if slug != slug2 {
			t.Errorf("slugs differ: %q vs %q, want case-insensitive collision", slug, slug2)
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, name := range []string{"", "a/b.txt", "note.md", "note", ".txt.bak"} {
			if _, _, err := v.CheckResourceName(name); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("CheckResourceName(%q) error = %v, want ErrInvalidArgument", name, err)
			}
		}
	})

	t.Run("accepts an uppercase suffix", func(t *testing.T) {
		_, slug, err := v.CheckResourceName("note.TXT")
		if err != nil {
			t.Fatalf("CheckResourceName(\"note.TXT\") error = %v", err)
		}
		if slug != "note.txt" {
			t.Errorf("slug = %q, want %q", slug, "note.txt")
		}
	})

	t.Run("enforces the length cap on the normalized name", func(t *testing.T) {
		longest := strings.Repeat("a", 251) + ".txt" // exactly 255 bytes
		if _, _, err := v.CheckResourceName(longest); err != nil {
			t.Errorf("CheckResourceName(255 bytes) error = %v, want nil", err)
		}

		tooLong := strings.Repeat("a", 252) + ".txt"
		if _, _, err := v.CheckResourceName(tooLong); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("CheckResourceName(256 bytes) error = %v, want ErrInvalidArgument", err)
		}
	})
}

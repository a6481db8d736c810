package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRVHandlerFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := &rvHandler{w: &buf, opID: "op-123"}

	r := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelInfo, "resource created", 0)
	r.AddAttrs(slog.String("user", "alice"), slog.String("resource", "note.txt"))

	if err := handler.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	want := "2026-01-02T03:04:05Z\tINFO\top-123\tresource created\tuser=alice\tresource=note.txt\n"
	if got := buf.String(); got != want {
		t.Errorf("log line = %q, want %q", got, want)
	}
}

func TestRVHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var handler slog.Handler = &rvHandler{w: &buf, opID: "op-456"}
	handler = handler.WithAttrs([]slog.Attr{slog.String("instance", "primary")})

	r := slog.NewRecord(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelWarn, "lock contention", 0)
	r.AddAttrs(slog.String("user", "bob"))

	if err := handler.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	line := buf.String()
	if !strings.Contains(line, "\tWARN\t") {
		t.Errorf("log line missing level: %q", line)
	}
	// Pre-set attrs come before per-record attrs.
	if !strings.Contains(line, "\tinstance=primary\tuser=bob\n") {
		t.Errorf("log line attrs out of order: %q", line)
	}
}

func TestSlogAdapter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	adapter := &slogAdapter{l: slog.New(&rvHandler{w: &buf, opID: "op-789"})}

	adapter.Info("hello", "k", "v")

	line := buf.String()
	if !strings.Contains(line, "\tINFO\top-789\thello\tk=v\n") {
		t.Errorf("log line = %q", line)
	}
}

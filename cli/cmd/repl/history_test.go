package repl

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("unexpected error loading missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"$(NAME)", modeEval},
		{"macros", modeCtrl},
		{"FLAGS", modeEval},
		{"  ", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "E:$(NAME)\nC:macros\nE:FLAGS\n"; string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(reloaded.Entries(), h.Entries()) {
		t.Errorf("expected %v, got %v", h.Entries(), reloaded.Entries())
	}
}

func TestHistory_Dedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := []HistoryEntry{{"b", modeEval}, {"a", modeEval}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// The same line in another mode is a distinct entry.
	if err := h.Add("a", modeCtrl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", h.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "E:b\nE:a\nC:a\n"; string(data) != want {
		t.Errorf("expected %q, got %q", want, string(data))
	}
}

func TestHistory_Navigation(t *testing.T) {
	h := NewHistory("")

	for _, e := range []HistoryEntry{
		{"x", modeEval},
		{"help", modeCtrl},
		{"y", modeEval},
		{"dump", modeCtrl},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"previous eval from end", h.Previous(h.Len(), modeEval), 2},
		{"previous eval", h.Previous(2, modeEval), 0},
		{"previous eval at start", h.Previous(0, modeEval), -1},
		{"previous ctrl from end", h.Previous(h.Len(), modeCtrl), 3},
		{"previous clamps", h.Previous(100, modeCtrl), 3},
		{"next ctrl", h.Next(0, modeCtrl), 1},
		{"next eval", h.Next(0, modeEval), 2},
		{"next past end", h.Next(2, modeEval), h.Len()},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, tt.got)
		}
	}

	if _, err := h.Entry(h.Len()); err != ErrOutOfBounds {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	e, err := h.Entry(1)
	if err != nil || e.Line != "help" || e.Mode != modeCtrl {
		t.Errorf("expected ctrl entry \"help\", got %+v (%v)", e, err)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:$(A)", HistoryEntry{"$(A)", modeEval}},
		{"C:bind sdk=macosx", HistoryEntry{"bind sdk=macosx", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

package cli

import (
	"path/filepath"
	"testing"
)

func TestProfileDir(t *testing.T) {
	base := filepath.Join("cache", "pprof")
	tests := []struct {
		command string
		want    string
	}{
		{"eval <name>", filepath.Join(base, "eval")},
		{"list", filepath.Join(base, "list")},
		{"  expr  <text>", filepath.Join(base, "expr")},
		{"", filepath.Join(base, "root")},
	}
	for _, tt := range tests {
		if got := profileDir(base, tt.command); got != tt.want {
			t.Errorf("profileDir(%q): expected %q, got %q", tt.command, tt.want, got)
		}
	}
}

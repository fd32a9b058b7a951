package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if expected := "macroeval"; Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}

	if Description == "" {
		t.Error("Expected a non-empty Description")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}

	if strings.ContainsAny(Version, " \t\n") {
		t.Errorf("Expected Version without whitespace, got %q", Version)
	}
}

func TestDirs(t *testing.T) {
	prefix := Prefix()
	if prefix == "" || strings.HasPrefix(prefix, ".") {
		t.Errorf("Expected a non-empty prefix without leading dots, got %q", prefix)
	}

	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != prefix {
			t.Errorf("Expected %s to end in %q, got %q", name, prefix, dir)
		}
	}
}

package lang

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{".", "."},
		{"/", "/"},
		{"a/b", "a/b"},
		{"/a//b/", "/a/b"},
		{"/a/./b", "/a/b"},
		{"/a/../b", "/b"},
		{"/../a", "/a"},
		{"a/../b", "b"},
		{"../a", "../a"},
		{"a/../../b", "../b"},
		{"./a/", "a"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.input); got != tt.expected {
			t.Errorf("NormalizePath(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		input, dir, base, suffix string
	}{
		{"/a/b.c", "/a", "b.c", ".c"},
		{"b.c", "", "b.c", ".c"},
		{"/b", "/", "b", ""},
		{"a.d/b", "a.d", "b", ""},
		{"a/b.tar.gz", "a", "b.tar.gz", ".gz"},
	}

	for _, tt := range tests {
		if got := dirname(tt.input); got != tt.dir {
			t.Errorf("dirname(%q): expected %q, got %q", tt.input, tt.dir, got)
		}

		if got := basename(tt.input); got != tt.base {
			t.Errorf("basename(%q): expected %q, got %q", tt.input, tt.base, got)
		}

		if got := fileSuffix(tt.input); got != tt.suffix {
			t.Errorf("fileSuffix(%q): expected %q, got %q", tt.input, tt.suffix, got)
		}
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		p, rhs, expected string
	}{
		{"", "b", "b"},
		{"a", "", "a"},
		{"a", "b", "a/b"},
		{"a/", "b", "a/b"},
		{"/", "b", "/b"},
		{"a", "/b", "/b"},
	}

	for _, tt := range tests {
		if got := joinPath(tt.p, tt.rhs); got != tt.expected {
			t.Errorf("joinPath(%q, %q): expected %q, got %q", tt.p, tt.rhs, tt.expected, got)
		}
	}
}

func TestQuoteList(t *testing.T) {
	items := []string{"a", "", "b c", `d"e`, `f\g`}

	quoted := QuoteList(items)
	if want := `a "" b\ c d\"e f\\g`; quoted != want {
		t.Fatalf("expected %q, got %q", want, quoted)
	}

	ns := NewNamespace(nil, "test")
	scope := NewScope(NewTable(ns), nil)

	got := scope.EvaluateListExpression(ParseStringList(quoted), nil)
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %q", len(items), got)
	}

	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d: expected %q, got %q", i, items[i], got[i])
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"YES", true},
		{"yes", true},
		{"true", true},
		{"T", true},
		{"1", true},
		{"9", true},
		{"0", false},
		{"NO", false},
		{"false", false},
		{" YES", false},
	}

	for _, tt := range tests {
		if got := ParseBool(tt.input); got != tt.expected {
			t.Errorf("ParseBool(%q): expected %t, got %t", tt.input, tt.expected, got)
		}
	}
}

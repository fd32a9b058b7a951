package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "debug", "debug"},
		{"int", 5, "5"},
		{"int64", int64(-3), "-3"},
		{"uint64", uint64(42), "42"},
		{"float", 1.5, "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagValue(tt.value); got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}

	list, ok := flagValue([]any{"a.yaml", uint64(2), true}).([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", flagValue([]any{}))
	}

	if !slices.Equal(list, []any{"a.yaml", "2", "true"}) {
		t.Errorf("expected stringified items, got %v", list)
	}
}

func TestResolve_Flatten(t *testing.T) {
	doc := `
log:
  level: debug
  pretty: false
time_layout: Kitchen
settings:
  - a.yaml
  - b.yaml
`

	r, err := resolve(t.Context())(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, ok := r.(config)
	if !ok {
		t.Fatalf("expected config, got %T", r)
	}

	want := map[string]any{
		"log-level":   "debug",
		"log-pretty":  false,
		"time-layout": "Kitchen",
	}

	for key, value := range want {
		if cfg[key] != value {
			t.Errorf("%s: expected %v, got %v", key, value, cfg[key])
		}
	}

	if got, _ := cfg["settings"].([]any); len(got) != 2 {
		t.Errorf("expected two settings, got %v", cfg["settings"])
	}

	if err := cfg.Validate(nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, doc := range []string{"", "key: [unterminated\n", "- not\n- a\n- mapping\n"} {
		r, err := resolve(t.Context())(strings.NewReader(doc))
		if err != nil {
			t.Errorf("%q: unexpected error: %v", doc, err)

			continue
		}

		if cfg, _ := r.(config); len(cfg) != 0 {
			t.Errorf("%q: expected empty config, got %v", doc, cfg)
		}
	}
}

func TestResolve_Kong(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseConfig)

	doc := "level: warn\ncount: 3\nverbose: true\nsettings: [a.yaml, b.yaml]\ncond: [sdk=iphoneos,macosx]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Level    string   `default:"info"`
		Count    int      `default:"1"`
		Verbose  bool
		Settings []string
		Cond     []string `sep:"none"`
	}

	parser, err := kong.New(&cli, kong.Configuration(resolve(t.Context()), path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--level=error"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cli.Level != "error" {
		t.Errorf("expected command line to win, got %q", cli.Level)
	}

	if cli.Count != 3 || !cli.Verbose {
		t.Errorf("expected count 3 and verbose, got %d and %t", cli.Count, cli.Verbose)
	}

	if !slices.Equal(cli.Settings, []string{"a.yaml", "b.yaml"}) {
		t.Errorf("expected settings from file, got %q", cli.Settings)
	}

	if !slices.Equal(cli.Cond, []string{"sdk=iphoneos,macosx"}) {
		t.Errorf("expected unsplit binding, got %q", cli.Cond)
	}
}

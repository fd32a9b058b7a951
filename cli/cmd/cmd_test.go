package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/thenexthub/Codira-sub015/lang"
)

const baseSettings = `$declare:
  FLAGS: stringList
  ENABLED: boolean
NAME: app
NAME[sdk=iphone*]: ios-app
CFLAGS: -O0
FLAGS:
  - -a
  - b c
ENABLED: true
`

const overlaySettings = `CFLAGS: $(inherited) -DRELEASE
PRODUCT: $(NAME:upper)
`

// writeSettings writes content to a file named name in dir and returns its
// path.
func writeSettings(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// settingsContext returns a context layering the base and overlay settings,
// with the given bindings.
func settingsContext(t *testing.T, bindings ...string) context.Context {
	t.Helper()

	dir := t.TempDir()
	base := writeSettings(t, dir, "base.yaml", baseSettings)
	overlay := writeSettings(t, dir, "overlay.yaml", overlaySettings)

	ctx := WithSources(t.Context(), []string{base, overlay})

	return WithBindings(ctx, bindings)
}

func TestOpenSources_Empty(t *testing.T) {
	if sources := openSources(nil); sources != nil {
		t.Errorf("expected no sources, got %v", sources)
	}

	if sources := sourcesFrom(t.Context()); len(sources) != 0 {
		t.Errorf("expected no sources without WithSources, got %v", sources)
	}
}

func TestOpenSources_Dedup(t *testing.T) {
	dir := t.TempDir()
	first := writeSettings(t, dir, "first.yaml", "A: 1\n")
	second := writeSettings(t, dir, "second.yaml", "B: 2\n")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(first, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	sources := openSources([]string{
		first,
		second,
		first,
		link,
		filepath.Join(dir, "missing.yaml"),
	})
	t.Cleanup(func() { closeSources(sources) })

	var names []string
	for _, src := range sources {
		names = append(names, src.Name)
	}

	if want := []string{first, second}; !slices.Equal(names, want) {
		t.Errorf("expected %q, got %q", want, names)
	}
}

func TestMakeFileKey(t *testing.T) {
	if _, ok := makeFileKey(nil); ok {
		t.Error("expected no key for nil info")
	}

	info, err := os.Stat(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := makeFileKey(info); !ok {
		t.Error("expected a key for a real file")
	}
}

func TestParseBindings(t *testing.T) {
	ns := lang.NewNamespace(nil, "test")

	values, err := parseBindings(ns, []string{
		"sdk=iphoneos17.0, iphoneos",
		"arch=arm64",
		"arch=x86_64",
		"variant=",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		param string
		want  []string
	}{
		{"sdk", []string{"iphoneos17.0", "iphoneos"}},
		{"arch", []string{"arm64", "x86_64"}},
		{"variant", []string{""}},
	}

	for _, tt := range tests {
		p := ns.LookupParameter(tt.param)
		if p == nil {
			t.Fatalf("expected %s to be declared", tt.param)
		}

		if got := values[p]; !slices.Equal(got, tt.want) {
			t.Errorf("%s: expected %q, got %q", tt.param, tt.want, got)
		}
	}

	for _, bad := range []string{"sdk", "=x", " =x"} {
		if _, err := parseBindings(ns, []string{bad}); !errors.Is(err, ErrBinding) {
			t.Errorf("%q: expected ErrBinding, got %v", bad, err)
		}
	}

	if values, err := parseBindings(ns, nil); values != nil || err != nil {
		t.Errorf("expected nothing for no bindings, got %v, %v", values, err)
	}
}

func TestLoadEnvironment_Layering(t *testing.T) {
	env, err := loadEnvironment(settingsContext(t, "sdk=iphoneos"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		want any
	}{
		{"CFLAGS", "-O0 -DRELEASE"},
		{"NAME", "ios-app"},
		{"PRODUCT", "IOS-APP"},
		{"ENABLED", true},
		{"FLAGS", []string{"-a", "b c"}},
	}

	for _, tt := range tests {
		m := env.lookupMacro(t.Context(), tt.name)
		if m == nil {
			t.Fatalf("expected %s to be defined", tt.name)
		}

		got := env.scope.Evaluate(m, nil)

		if list, ok := tt.want.([]string); ok {
			if !slices.Equal(got.([]string), list) {
				t.Errorf("%s: expected %q, got %q", tt.name, list, got)
			}

			continue
		}

		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}

	if env.lookupMacro(t.Context(), "UNDEFINED") != nil {
		t.Error("expected undefined macro to be nil")
	}
}

func TestLoadEnvironment_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeSettings(t, dir, "bad.yaml", "NESTED:\n  A: b\n")

	_, err := loadEnvironment(WithSources(t.Context(), []string{bad}))
	if !errors.Is(err, ErrReadSettings) {
		t.Errorf("expected ErrReadSettings, got %v", err)
	}

	_, err = loadEnvironment(WithBindings(t.Context(), []string{"nope"}))
	if !errors.Is(err, ErrBinding) {
		t.Errorf("expected ErrBinding, got %v", err)
	}
}

func TestLoadEnvironment_Reload(t *testing.T) {
	ctx := settingsContext(t)

	for range 2 {
		env, err := loadEnvironment(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := env.scope.EvaluateString(env.ns.Lookup("NAME"), nil); got != "app" {
			t.Errorf("expected %q, got %q", "app", got)
		}
	}
}

func TestError(t *testing.T) {
	err := ErrReadSettings.Wrap(os.ErrNotExist)

	if !errors.Is(err, ErrReadSettings) {
		t.Error("expected wrapped error to match its sentinel")
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected wrapped error to match its cause")
	}

	if errors.Is(err, ErrBinding) {
		t.Error("expected distinct sentinels not to match")
	}
}

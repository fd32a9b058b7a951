package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	sourcesKey  struct{}
	bindingsKey struct{}
)

// Source is one settings document named on the command line.
type Source struct {
	Name string
	io.Reader
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSources returns a new context.Context carrying the paths of the
// settings documents, in order. The documents are opened each time the
// settings are loaded.
//
// Paths are deduplicated by resolving symlinks and comparing device/inode
// pairs, keeping the first occurrence. All occurrences of "-" are replaced
// with a single stdin source placed last.
func WithSources(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, sourcesKey{}, paths)
}

func sourcePathsFrom(ctx context.Context) []string {
	p, _ := ctx.Value(sourcesKey{}).([]string)

	return p
}

func sourcesFrom(ctx context.Context) []Source {
	return openSources(sourcePathsFrom(ctx))
}

// WithBindings returns a new context.Context carrying condition parameter
// bindings of the form "param=value[,value...]".
func WithBindings(ctx context.Context, bindings []string) context.Context {
	return context.WithValue(ctx, bindingsKey{}, bindings)
}

func bindingsFrom(ctx context.Context) []string {
	b, _ := ctx.Value(bindingsKey{}).([]string)

	return b
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

func openSources(paths []string) []Source {
	if len(paths) == 0 {
		return nil
	}

	sources := make([]Source, 0, len(paths))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		file, ok := openUniqueFile(path, seen)
		if !ok {
			log.Debug("skipped settings source", slog.String("path", path))

			continue
		}

		sources = append(sources, Source{Name: path, Reader: file})
	}

	// Stdin may have been included via "-" or as a named device file.
	if _, ok := seen[stdinKey]; ok {
		sources = append(sources, Source{Name: stdinSource, Reader: os.Stdin})
	}

	return sources
}

// openUniqueFile opens the file at path if it hasn't been seen before.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, exists := seen[key]; exists {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

func closeSources(sources []Source) {
	for _, src := range sources {
		if closer, ok := src.Reader.(io.Closer); ok && src.Name != stdinSource {
			_ = closer.Close()
		}
	}
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// environment is the evaluation state shared by the commands: every
// settings source layered into one table, and a scope over it with the
// command-line condition bindings applied.
type environment struct {
	ns     *lang.Namespace
	table  *lang.Table
	scope  *lang.Scope
	values map[*lang.Parameter][]string
}

// loadEnvironment reads the settings sources in ctx in order. Later sources
// take precedence over earlier ones, whose values remain reachable through
// "$(inherited)".
func loadEnvironment(ctx context.Context) (*environment, error) {
	session := lang.EnableInterning()
	defer session.Release()

	ns := lang.NewNamespace(nil, "settings")
	table := lang.NewTable(ns)

	sources := sourcesFrom(ctx)
	defer closeSources(sources)

	for _, src := range sources {
		layer, err := readLayer(ctx, ns, src)
		if err != nil {
			return nil, err
		}

		table.PushContentsOf(layer)
	}

	values, err := parseBindings(ns, bindingsFrom(ctx))
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "loaded settings",
		slog.Int("sources", len(sources)),
		slog.Int("macros", table.Len()),
		slog.Int("bindings", len(values)),
	)

	return &environment{
		ns:     ns,
		table:  table,
		scope:  lang.NewScope(table, values),
		values: values,
	}, nil
}

func readLayer(ctx context.Context, ns *lang.Namespace, src Source) (*lang.Table, error) {
	settings, err := lang.ReadSettings(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return nil, ErrReadSettings.With(slog.String("source", src.Name)).Wrap(err)
	}

	layer, err := settings.Table(ns,
		lang.WithUserDefined(true),
		lang.WithDiagnostics(diagnosticLogger(ctx, src.Name)),
	)
	if err != nil {
		return nil, ErrReadSettings.With(slog.String("source", src.Name)).Wrap(err)
	}

	return layer, nil
}

// diagnosticLogger returns a handler logging each diagnostic as a warning.
func diagnosticLogger(ctx context.Context, source string) lang.DiagnosticHandler {
	return func(d lang.Diagnostic) {
		level := log.WarnContext
		if d.Level == lang.LevelError {
			level = log.ErrorContext
		}

		level(ctx, d.Message(),
			slog.String("source", source),
			slog.Any("diagnostic", d),
		)
	}
}

// parseBindings parses "param=value[,value...]" bindings, declaring each
// parameter in ns. Repeated parameters accumulate values in order.
func parseBindings(ns *lang.Namespace, bindings []string) (map[*lang.Parameter][]string, error) {
	if len(bindings) == 0 {
		return nil, nil
	}

	values := make(map[*lang.Parameter][]string, len(bindings))

	for _, binding := range bindings {
		name, list, ok := strings.Cut(binding, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, ErrBinding.With(slog.String("binding", binding))
		}

		p := ns.DeclareParameter(name)

		for v := range strings.SplitSeq(list, ",") {
			values[p] = append(values[p], strings.TrimSpace(v))
		}
	}

	return values, nil
}

// lookupMacro returns the macro named name, or nil after logging that it is
// undefined. Undefined macros evaluate to nothing.
func (env *environment) lookupMacro(ctx context.Context, name string) *lang.Macro {
	m := env.ns.Lookup(name)
	if m == nil {
		log.WarnContext(ctx, "undefined macro", slog.String("name", name))
	}

	return m
}

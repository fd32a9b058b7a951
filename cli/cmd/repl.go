package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/thenexthub/Codira-sub015/cli/cmd/repl"
	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
)

// historyFile is the name of the REPL history file in the cache directory.
const historyFile = "history.utf8"

// Repl starts an interactive session over the layered settings.
type Repl struct {
	NoHistory bool `help:"Do not read or write the history file" name:"no-history"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return repl.Run(ctx, r.config(ctx))
}

func (r *Repl) config(ctx context.Context) repl.Config {
	cfg := repl.Config{
		Load:    loadScope,
		Sources: editableSources(sourcePathsFrom(ctx)),
		Logger:  log.Default().With(slog.String("cmd", "repl")),
	}

	if !r.NoHistory {
		if ktx := kongContextFrom(ctx); ktx != nil {
			if dir, ok := ktx.Model.Vars()[CacheIdentifier]; ok && dir != "" {
				cfg.HistoryPath = filepath.Join(dir, historyFile)
			}
		}
	}

	return cfg
}

// loadScope reads every settings source again and returns the scope with the
// command-line bindings applied.
func loadScope(ctx context.Context) (*lang.Scope, error) {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return nil, err
	}

	return env.scope, nil
}

// editableSources returns the paths that name files, in order.
func editableSources(paths []string) []string {
	return slices.DeleteFunc(slices.Clone(paths), func(p string) bool {
		return p == stdinSource
	})
}

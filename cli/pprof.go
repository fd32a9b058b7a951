//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
	"github.com/thenexthub/Codira-sub015/profile"
)

// pprofConfig profiles one macroeval command, such as a slow eval over a
// large stack of settings documents.
type pprofConfig struct {
	Profile string `default:""                enum:",${pprofProfileEnum}" help:"Profile settings ingestion and macro evaluation (${enum})" placeholder:"KIND" short:"p"`
	Out     string `default:"${pprofOutDir}"                               help:"Directory receiving one subdirectory of profiles per command"  placeholder:"DIR" type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofProfileEnum": strings.Join(slices.Collect(profile.Modes()), ","),
		"pprofOutDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Evaluation profiling (pprof)"}
}

// start profiles the named command until the returned function is called,
// which also logs the engine counters gathered during the run.
func (f pprofConfig) start(ctx context.Context, command string) (stop func()) {
	if f.Profile == "" {
		return func() {}
	}

	dir := profileDir(f.Out, command)
	before := lang.Stats()

	log.DebugContext(ctx, "profiling command",
		slog.String("command", command),
		slog.String("profile", f.Profile),
		slog.String("dir", dir),
	)

	profiler := profile.Config{Mode: f.Profile, Path: dir, Quiet: true}.Start()

	return func() {
		profiler.Stop()

		log.InfoContext(ctx, "profile written",
			slog.String("profile", f.Profile),
			slog.String("dir", dir),
			slog.Any("stats", lang.Stats().Sub(before)),
		)
	}
}

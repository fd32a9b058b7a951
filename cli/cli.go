package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/thenexthub/Codira-sub015/cli/cmd"
	"github.com/thenexthub/Codira-sub015/pkg"
)

// CLI is the top-level command-line interface for macroeval.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit"`

	Settings []string `help:"Settings document(s) layered in order, or '-' for stdin" name:"settings" placeholder:"FILE" short:"s" type:"path"`
	Bind     []string `help:"Bind condition parameter values (param=v1,v2)"           name:"cond"     placeholder:"PARAM=VALUE" sep:"none" short:"c"`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Fmt    cmd.Fmt    `cmd:"" help:"Format settings documents"`
	Eval   cmd.Eval   `cmd:"" default:"withargs" help:"Evaluate macros"`
	Expand cmd.Expand `cmd:"" help:"Evaluate macro expressions"`
	Dump   cmd.Dump   `cmd:"" help:"Print assignment chains"`
	Parse  cmd.Parse  `cmd:"" help:"Compile an expression and report diagnostics"`
	Cond   cmd.Cond   `cmd:"" help:"Evaluate a condition expression"`
	Repl   cmd.Repl   `cmd:"" help:"Start an interactive session"`
}

// Run executes the macroeval CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that boolean flags like --log-pretty take
	// effect before kong reports parse errors.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSources(ctx, cli.Settings)
	ctx = cmd.WithBindings(ctx, cli.Bind)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx, ktx.Command())()

	return ktx.Run(ctx, &cli)
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
)

// Fmt re-emits a settings document with sorted keys.
type Fmt struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format (${enum})"  short:"o"`
	Indent int    `default:"2"                     help:"Indent width; 0 selects flow (YAML) or compact (JSON) output" short:"i"`

	Source string `arg:"" default:"-" help:"Settings document or '-' for stdin" name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var file *os.File
	if f.Source == stdinSource {
		file = os.Stdin
	} else {
		file, err = os.Open(f.Source)
		if err != nil {
			return ErrReadSettings.With(slog.String("source", f.Source)).Wrap(err)
		}
		defer file.Close()
	}

	return f.run(ctx, file, os.Stdout)
}

func (f *Fmt) run(ctx context.Context, r io.Reader, w io.Writer) error {
	settings, err := lang.ReadSettings(ctx, r, lang.WithLogger(log.Default()))
	if err != nil {
		return ErrReadSettings.With(slog.String("source", f.Source)).Wrap(err)
	}

	// Parse every value so malformed expressions are reported.
	if _, err := settings.Table(lang.NewNamespace(nil, "fmt"),
		lang.WithUserDefined(true),
		lang.WithDiagnostics(diagnosticLogger(ctx, f.Source)),
	); err != nil {
		return ErrReadSettings.With(slog.String("source", f.Source)).Wrap(err)
	}

	if f.Format == formatJSON {
		err = settings.FormatJSON(ctx, w, f.Indent)
	} else {
		err = settings.FormatYAML(ctx, w, f.Indent)
	}

	if err != nil {
		return ErrOutput.With(slog.String("format", f.Format)).Wrap(err)
	}

	return nil
}

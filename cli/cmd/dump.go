package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Dump prints the layered settings table.
type Dump struct {
	Format string `default:"dump" enum:"dump,yaml,json" help:"Output format (${enum})" short:"o"`
	Indent int    `default:"2"                          help:"Indent width for YAML and JSON output" short:"i"`
	Bound  bool   `help:"Drop assignments whose conditions the --cond bindings rule out, and the bound conditions from the rest"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return d.run(ctx, os.Stdout)
}

func (d *Dump) run(ctx context.Context, w io.Writer) error {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}

	table := env.table

	if d.Bound {
		for p, values := range env.values {
			table = table.BindConditionParameter(p, values...)
		}
	}

	switch d.Format {
	case formatYAML:
		err = table.FormatYAML(ctx, w, d.Indent)
	case formatJSON:
		err = table.FormatJSON(ctx, w, d.Indent)
	default:
		err = table.Format(ctx, w)
	}

	if err != nil {
		return ErrOutput.With(slog.String("format", d.Format)).Wrap(err)
	}

	return nil
}

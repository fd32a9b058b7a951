package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thenexthub/Codira-sub015/lang"
)

// Parse compiles an expression and prints its diagnostics and program.
// It reads no settings.
type Parse struct {
	Expr    string `arg:"" help:"Expression to compile" name:"expr"`
	List    bool   `       help:"Parse the expression as a list"          short:"l"`
	Encoded bool   `       help:"Also print the binary encoding in hex"   short:"x"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return p.run(ctx, os.Stdout)
}

func (p *Parse) run(_ context.Context, w io.Writer) error {
	var diags []lang.Diagnostic

	handler := func(d lang.Diagnostic) { diags = append(diags, d) }

	var expr *lang.Expression
	if p.List {
		expr = lang.ParseStringList(p.Expr, handler)
	} else {
		expr = lang.ParseString(p.Expr, handler)
	}

	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "%s (%q)\n", d, d.Text()); err != nil {
			return ErrOutput.Wrap(err)
		}
	}

	if _, err := fmt.Fprintln(w, expr.Program()); err != nil {
		return ErrOutput.Wrap(err)
	}

	if !p.Encoded {
		return nil
	}

	data, err := expr.MarshalBinary()
	if err != nil {
		return ErrOutput.With(slog.String("encoding", "binary")).Wrap(err)
	}

	if _, err := fmt.Fprintln(w, hex.EncodeToString(data)); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/thenexthub/Codira-sub015/lang"
)

// Cond evaluates a condition expression against the layered settings.
type Cond struct {
	Expr string `arg:"" help:"Condition, such as '$(CONFIGURATION) == Debug && !$(SKIP_INSTALL)'" name:"expr"`
	Bool bool   `       help:"Print the boolean result (YES or NO) and exit 1 when false"          short:"b"`
}

// Run executes the cond command.
func (c *Cond) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	truth, err := c.run(ctx, os.Stdout)
	if err == nil && c.Bool && !truth {
		if ktx := kongContextFrom(ctx); ktx != nil {
			ktx.Exit(1)
		}
	}

	return err
}

func (c *Cond) run(ctx context.Context, w io.Writer) (bool, error) {
	cond, err := lang.CompileCondition(c.Expr)
	if err != nil {
		return false, ErrCondition.Wrap(err)
	}

	env, err := loadEnvironment(ctx)
	if err != nil {
		return false, err
	}

	var (
		value any
		truth bool
	)

	if c.Bool {
		truth, err = cond.EvaluateBool(env.scope)
		value = truth
	} else {
		value, err = cond.EvaluateString(env.scope)
	}

	if err != nil {
		return false, ErrCondition.With(slog.String("expr", c.Expr)).Wrap(err)
	}

	return truth, writeResults(ctx, w, formatText, false, result{name: "cond", value: value})
}

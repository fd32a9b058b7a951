package cmd

import (
	"context"
	"io"
	"os"
)

// Eval evaluates macros in the layered settings.
type Eval struct {
	Names  []string `arg:""                                       help:"Macro names to evaluate"                    name:"name"`
	Format string   `default:"text" enum:"text,yaml,json" help:"Output format (${enum})"                    short:"o"`
	Split  bool     `                                             help:"Write list values one item per line"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return e.run(ctx, os.Stdout)
}

func (e *Eval) run(ctx context.Context, w io.Writer) error {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}

	results := make([]result, 0, len(e.Names))

	for _, name := range e.Names {
		var value any = ""

		if m := env.lookupMacro(ctx, name); m != nil {
			value = env.scope.Evaluate(m, nil)
		}

		results = append(results, result{name: name, value: value})
	}

	return writeResults(ctx, w, e.Format, e.Split, results...)
}

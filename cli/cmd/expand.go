package cmd

import (
	"context"
	"io"
	"os"

	"github.com/thenexthub/Codira-sub015/lang"
)

// Expand evaluates an ad hoc expression against the layered settings.
type Expand struct {
	Expr  string `arg:"" help:"Expression to evaluate, such as '$(PRODUCT_NAME:lower)'" name:"expr"`
	List  bool   `       help:"Parse the expression as a list"                           short:"l"`
	Split bool   `       help:"Write list items one per line"`
}

// Run executes the expand command.
func (x *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return x.run(ctx, os.Stdout)
}

func (x *Expand) run(ctx context.Context, w io.Writer) error {
	env, err := loadEnvironment(ctx)
	if err != nil {
		return err
	}

	handler := diagnosticLogger(ctx, "expr")

	var value any

	if x.List {
		value = env.scope.EvaluateListExpression(lang.ParseStringList(x.Expr, handler), nil)
	} else {
		value = env.scope.EvaluateExpression(lang.ParseString(x.Expr, handler), nil)
	}

	return writeResults(ctx, w, formatText, x.Split, result{name: "expr", value: value})
}

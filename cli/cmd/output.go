package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/thenexthub/Codira-sub015/lang"
)

// Output formats shared by the evaluating commands.
const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

// result is one named evaluation result.
type result struct {
	name  string
	value any
}

// writeResults writes results to w in the given format. Text output is one
// value per line, prefixed by its name when there is more than one result.
// With split set, list values are written one item per line.
func writeResults(
	ctx context.Context,
	w io.Writer,
	format string,
	split bool,
	results ...result,
) error {
	var err error

	switch format {
	case formatYAML, formatJSON:
		doc := make(yaml.MapSlice, 0, len(results))
		for _, r := range results {
			doc = append(doc, yaml.MapItem{Key: r.name, Value: r.value})
		}

		opts := []yaml.EncodeOption{yaml.Indent(2)}
		if format == formatJSON {
			opts = append(opts, yaml.JSON())
		}

		var data []byte

		data, err = yaml.MarshalContext(ctx, doc, opts...)
		if err == nil {
			_, err = w.Write(data)
		}

	default:
		for _, r := range results {
			if err = writeText(w, r, split, len(results) > 1); err != nil {
				break
			}
		}
	}

	if err != nil {
		return ErrOutput.With(slog.String("format", format)).Wrap(err)
	}

	return nil
}

func writeText(w io.Writer, r result, split, named bool) error {
	var text string

	switch v := r.value.(type) {
	case bool:
		text = lang.FormatBool(v)
	case []string:
		if split {
			text = strings.Join(v, "\n")
		} else {
			text = lang.QuoteList(v)
		}
	default:
		text = fmt.Sprint(v)
	}

	if named {
		text = r.name + " = " + text
	}

	_, err := fmt.Fprintln(w, text)

	return err
}

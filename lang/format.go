package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the table dump to the writer, one macro per line.
func (t *Table) Format(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, t.Dump())

	return err
}

// FormatJSON writes the table as a JSON settings map to the writer.
func (t *Table) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return formatJSON(w, t.ToMap(), indent)
}

// FormatYAML writes the table as a YAML settings map with sorted keys.
func (t *Table) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return formatYAML(ctx, w, t.ToMap(), indent)
}

// FormatJSON writes the document as JSON to the writer.
func (s *Settings) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return formatJSON(w, s.ToMap(), indent)
}

// FormatYAML writes the document as YAML with sorted keys.
func (s *Settings) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return formatYAML(ctx, w, s.ToMap(), indent)
}

func formatJSON(w io.Writer, m map[string]any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(m, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(m)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func formatYAML(ctx context.Context, w io.Writer, m map[string]any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, sortedMapSlice(m), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(yamlData)

	return err
}

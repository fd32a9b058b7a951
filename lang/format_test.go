package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newFormatTable(t *testing.T) *Table {
	t.Helper()

	ns := NewNamespace(nil, "test")
	b := mustDeclare(t, ns, KindString, "B")
	a := mustDeclare(t, ns, KindStringList, "A")
	sdk := ns.DeclareParameter("sdk")

	table := NewTable(ns)
	table.PushString(b, "old")
	table.PushString(b, "new")
	table.PushString(b, "mac", Condition{Parameter: sdk, Pattern: "macosx*"})
	table.Push(a, ParseStringList("-x -y"))

	return table
}

func TestTable_ToMap(t *testing.T) {
	m := newFormatTable(t).ToMap()

	want := map[string]any{
		"A":              "-x -y",
		"B":              "new",
		"B[sdk=macosx*]": "mac",
	}

	if len(m) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), m)
	}

	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s: expected %q, got %v", k, v, m[k])
		}
	}
}

func TestTable_FormatJSON(t *testing.T) {
	var buf bytes.Buffer

	if err := newFormatTable(t).FormatJSON(t.Context(), &buf, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if decoded["B[sdk=macosx*]"] != "mac" {
		t.Errorf("expected conditional key, got %v", decoded)
	}

	if !strings.Contains(buf.String(), "\n  \"A\"") {
		t.Errorf("expected two-space indentation, got %q", buf.String())
	}
}

func TestTable_FormatYAML(t *testing.T) {
	table := newFormatTable(t)

	var buf bytes.Buffer

	if err := table.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()

	ia, ib := strings.Index(out, "A:"), strings.Index(out, "B:")
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("expected sorted keys, got %q", out)
	}

	// The output reads back as an equivalent table.
	settings, err := ReadSettings(t.Context(), strings.NewReader(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ns := NewNamespace(nil, "reparse")
	mustDeclare(t, ns, KindString, "B")
	mustDeclare(t, ns, KindStringList, "A")

	reparsed, err := settings.Table(ns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := reparsed.Dump(), "'A' := '-x -y' (type: stringList)\n"+
		"'B' := [sdk=macosx*]'mac' -> 'new' (type: string)\n"; got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestTable_Format(t *testing.T) {
	table := newFormatTable(t)

	var buf bytes.Buffer

	if err := table.Format(t.Context(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != table.Dump() {
		t.Errorf("expected dump, got %q", buf.String())
	}
}

func TestSettings_ToMap(t *testing.T) {
	settings := &Settings{
		Declarations: map[string]Kind{"X": KindPath},
		Values:       map[string]any{"X": "/tmp"},
	}

	m := settings.ToMap()

	decls, ok := m[DeclareKey].(map[string]any)
	if !ok || decls["X"] != "path" {
		t.Errorf("expected declarations under %s, got %v", DeclareKey, m)
	}

	var buf bytes.Buffer

	if err := settings.FormatYAML(t.Context(), &buf, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "path") {
		t.Errorf("expected kind name in output, got %q", buf.String())
	}
}

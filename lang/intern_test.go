package lang

import "testing"

func TestInterning(t *testing.T) {
	if InterningEnabled() {
		t.Fatal("expected interning to be disabled initially")
	}

	if ParseLiteralString("same") == ParseLiteralString("same") {
		t.Error("expected distinct expressions without interning")
	}

	outer := EnableInterning()
	inner := EnableInterning()

	a := ParseString("shared")
	b := ParseLiteralString("shared")

	if a != b {
		t.Error("expected interned literals to be shared")
	}

	inner.Release()
	inner.Release()

	if !InterningEnabled() {
		t.Fatal("expected outer session to keep interning enabled")
	}

	if ParseLiteralString("shared") != a {
		t.Error("expected interning table to survive the inner session")
	}

	outer.Release()

	if InterningEnabled() {
		t.Error("expected interning to be disabled after the last release")
	}

	if ParseLiteralString("shared") == a {
		t.Error("expected interning table to be dropped")
	}
}

func TestParseString_LiteralFastPath(t *testing.T) {
	expr := ParseString("no references here")

	lit, ok := expr.LiteralString()
	if !ok || lit != "no references here" {
		t.Errorf("expected literal program, got %q (literal=%t)", lit, ok)
	}

	if ParseString("$(X)").IsLiteral() {
		t.Error("expected a reference to compile to instructions")
	}

	if ParseString("$(X)").IsList() || !ParseStringList("a").IsList() {
		t.Error("unexpected expression arity")
	}

	list := ParseLiteralStringList([]string{"a b", ""})
	if list.Source() != `a\ b ""` {
		t.Errorf("expected quoted source, got %q", list.Source())
	}
}

func TestParseForMacro(t *testing.T) {
	ns := NewNamespace(nil, "test")
	s := mustDeclare(t, ns, KindString, "S")
	l := mustDeclare(t, ns, KindStringList, "L")

	if expr := ns.ParseForMacro(s, "a b"); expr == nil || expr.IsList() {
		t.Errorf("expected scalar expression, got %v", expr)
	}

	if expr := ns.ParseForMacro(l, "a b"); expr == nil || !expr.IsList() {
		t.Errorf("expected list expression, got %v", expr)
	}

	if expr := ns.ParseForMacro(s, []string{"a b", "c"}); expr == nil || expr.Source() != `a\ b c` {
		t.Errorf("expected quoted scalar, got %v", expr)
	}

	if expr := ns.ParseForMacro(s, 42); expr != nil {
		t.Errorf("expected nil for an unsupported value, got %v", expr)
	}

	var diags []Diagnostic

	ns.ParseForMacro(l, `"open`, func(d Diagnostic) { diags = append(diags, d) })

	if len(diags) != 1 || diags[0].Kind != UnterminatedQuotation {
		t.Errorf("expected one unterminatedQuotation diagnostic, got %v", diags)
	}
}

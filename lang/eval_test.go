package lang

import (
	"slices"
	"testing"
)

func mustDeclare(t *testing.T, ns *Namespace, kind Kind, name string) *Macro {
	t.Helper()

	m, err := ns.Declare(kind, name)
	if err != nil {
		t.Fatalf("Declare(%v, %q) failed: %v", kind, name, err)
	}

	return m
}

// parseFor parses value with the arity of m.
func parseFor(m *Macro, value string) *Expression {
	if m.Kind().IsList() {
		return ParseStringList(value)
	}

	return ParseString(value)
}

func TestEvaluate_Strings(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")
	p := mustDeclare(t, ns, KindString, "P")
	fooName := mustDeclare(t, ns, KindString, "FOO_NAME")
	path := mustDeclare(t, ns, KindString, "SRC")
	mustDeclare(t, ns, KindString, "EMPTY")
	flag := mustDeclare(t, ns, KindBoolean, "FLAG")
	flags := mustDeclare(t, ns, KindStringList, "FLAGS")

	table := NewTable(ns)
	table.PushString(x, "x")
	table.PushString(p, "FOO")
	table.PushString(fooName, "bar")
	table.PushString(path, "/tmp/foo.c")
	table.PushBoolean(flag, true)
	table.Push(flags, ParseStringList("-a -b"))

	scope := NewScope(table, nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"literal", "abc", "abc"},
		{"empty", "", ""},
		{"reference", "$(X)y", "xy"},
		{"bare reference", "$X-y", "x-y"},
		{"braces", "${X}", "x"},
		{"nested name", "$($(P)_NAME)", "bar"},
		{"undeclared", "a$(NOPE)b", "ab"},
		{"bare undeclared", "$NOPE", "$NOPE"},
		{"escaped dollar", "$$(X)", "$(X)"},
		{"list as string", "$(FLAGS)", "-a -b"},
		{"upper", "$(X:upper)", "X"},
		{"upper list", "$(FLAGS:upper)", "-A -B"},
		{"dir", "$(SRC:dir)", "/tmp/"},
		{"file", "$(SRC:file)", "foo.c"},
		{"base", "$(SRC:base)", "foo"},
		{"suffix", "$(SRC:suffix)", ".c"},
		{"chained", "$(SRC:file:upper)", "FOO.C"},
		{"replace suffix", "$(SRC:suffix=.o)", "/tmp/foo.o"},
		{"replace bare suffix", "$(SRC:suffix=o)", "/tmp/foo.o"},
		{"replace dir", "$(SRC:dir=/out)", "/out/foo.c"},
		{"replace file", "$(SRC:file=bar.h)", "/tmp/bar.h"},
		{"replace base", "$(SRC:base=bar)", "/tmp/bar.c"},
		{"replace operand reference", "$(SRC:file=$(X).h)", "/tmp/x.h"},
		{"default undeclared", "$(NOPE:default=fallback)", "fallback"},
		{"default empty", "$(EMPTY:default=fallback)", "fallback"},
		{"default set", "$(X:default=fallback)", "x"},
		{"not", "$(FLAG:not)", "NO"},
		{"isancestor", "$(SRC:isancestor=/tmp)", "YES"},
		{"isancestor relative", "$(X:isancestor=/tmp)", "NO"},
		{"relativeto", "$(SRC:relativeto=/tmp/foo.c/bar)", "bar"},
		{"relativeto relative", "$(X:relativeto=/tmp)", "x"},
		{"unknown operator", "$(X:bogus)", "x"},
		{"unknown replacement", "$(X:bogus=$(SRC))", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scope.EvaluateExpression(ParseString(tt.input), nil)
			if got != tt.expected {
				t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestEvaluate_Lists(t *testing.T) {
	ns := NewNamespace(nil, "test")
	flags := mustDeclare(t, ns, KindStringList, "FLAGS")
	x := mustDeclare(t, ns, KindString, "X")
	mustDeclare(t, ns, KindStringList, "NONE")

	table := NewTable(ns)
	table.Push(flags, ParseStringList("-a -b"))
	table.PushString(x, "one two")

	scope := NewScope(table, nil)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{}},
		{"whitespace", "  ", []string{}},
		{"words", "a b  c", []string{"a", "b", "c"}},
		{"empty element", "a '' b", []string{"a", "", "b"}},
		{"quoted", `one "two three" four`, []string{"one", "two three", "four"}},
		{"escaped", `a\ b c`, []string{"a b", "c"}},
		{"splice", "$(FLAGS) -c", []string{"-a", "-b", "-c"}},
		{"quoted splice", `x "$(FLAGS)"`, []string{"x", "-a -b"}},
		{"prefix splice", "-I$(FLAGS)", []string{"-I-a", "-b"}},
		{"string macro", "$(X)", []string{"one two"}},
		{"empty list macro", "a $(NONE) b", []string{"a", "b"}},
		{"retrieval", "$(FLAGS:upper)", []string{"-A", "-B"}},
		{"replacement", "$(FLAGS:suffix=.o)", []string{"-a.o", "-b.o"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scope.EvaluateListExpression(ParseStringList(tt.input), nil)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestEvaluate_Inherited(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")
	y := mustDeclare(t, ns, KindString, "Y")

	table := NewTable(ns)
	table.PushString(x, "a")
	table.Push(x, ParseString("b $(inherited)"))
	table.Push(x, ParseString("$(X)c"))
	table.Push(y, ParseString("$(inherited)y"))

	scope := NewScope(table, nil)

	if got := scope.EvaluateString(x, nil); got != "b ac" {
		t.Errorf("expected %q, got %q", "b ac", got)
	}

	if got := scope.EvaluateString(y, nil); got != "y" {
		t.Errorf("expected %q, got %q", "y", got)
	}

	// Outside of any macro "$(inherited)" names nothing.
	if got := scope.EvaluateExpression(ParseString("[$(inherited)]"), nil); got != "[]" {
		t.Errorf("expected %q, got %q", "[]", got)
	}
}

func TestEvaluate_InheritedAcrossTables(t *testing.T) {
	ns := NewNamespace(nil, "test")
	cflags := mustDeclare(t, ns, KindStringList, "OTHER_CFLAGS")

	project := NewTable(ns)
	project.Push(cflags, ParseStringList("$(inherited) -DPROJECT"))

	target := NewTable(ns)
	target.Push(cflags, ParseStringList("$(inherited) -DTARGET"))

	combined := project.Clone()
	combined.PushContentsOf(target)

	scope := NewScope(combined, nil)

	list := scope.EvaluateList(cflags, nil)
	if want := []string{"-DPROJECT", "-DTARGET"}; !slices.Equal(list, want) {
		t.Errorf("expected %q, got %q", want, list)
	}

	if got, want := scope.EvaluateString(cflags, nil), " -DPROJECT -DTARGET"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// The source tables are untouched.
	if got := NewScope(project, nil).EvaluateList(cflags, nil); !slices.Equal(got, []string{"-DPROJECT"}) {
		t.Errorf("expected project table unchanged, got %q", got)
	}
}

func TestEvaluate_Conditions(t *testing.T) {
	ns := NewNamespace(nil, "test")
	foo := mustDeclare(t, ns, KindString, "FOO")
	bar := mustDeclare(t, ns, KindString, "BAR")
	sdk := ns.DeclareParameter("sdk")
	arch := ns.DeclareParameter("arch")

	table := NewTable(ns)
	table.PushString(foo, "other")
	table.PushString(foo, "ios", Condition{Parameter: sdk, Pattern: "iphoneos*"})
	table.PushString(foo, "ios-arm64",
		Condition{Parameter: sdk, Pattern: "iphoneos*"},
		Condition{Parameter: arch, Pattern: "arm64"})
	table.Push(bar, ParseString("$(inherited)+$(FOO)"))
	table.Push(bar, ParseString("[$(inherited)]"), Condition{Parameter: arch, Pattern: "*"})

	tests := []struct {
		name     string
		values   map[*Parameter][]string
		foo, bar string
	}{
		{"unbound", nil, "other", "[+other]"},
		{"sdk", map[*Parameter][]string{sdk: {"iphoneos17.0"}}, "ios", "[+ios]"},
		{"other sdk", map[*Parameter][]string{sdk: {"macosx"}}, "other", "[+other]"},
		{
			"sdk and arch",
			map[*Parameter][]string{sdk: {"iphoneos"}, arch: {"x86_64", "arm64"}},
			"ios-arm64", "[+ios-arm64]",
		},
		{"arch only", map[*Parameter][]string{arch: {"arm64"}}, "other", "[+other]"},
		{"empty arch", map[*Parameter][]string{arch: {}}, "other", "+other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := NewScope(table, tt.values)

			if got := scope.EvaluateString(foo, nil); got != tt.foo {
				t.Errorf("FOO: expected %q, got %q", tt.foo, got)
			}

			if got := scope.EvaluateString(bar, nil); got != tt.bar {
				t.Errorf("BAR: expected %q, got %q", tt.bar, got)
			}
		})
	}
}

func TestEvaluate_Lookup(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")
	y := mustDeclare(t, ns, KindString, "Y")

	table := NewTable(ns)
	table.PushString(x, "x")
	table.Push(y, ParseString("<$(X)>"))

	scope := NewScope(table, nil)

	lookup := func(m *Macro) *Expression {
		if m == x {
			return ParseString("$(inherited)-o")
		}

		return nil
	}

	if got := scope.EvaluateString(x, lookup); got != "x-o" {
		t.Errorf("expected %q, got %q", "x-o", got)
	}

	if got := scope.EvaluateString(y, lookup); got != "<x-o>" {
		t.Errorf("expected %q, got %q", "<x-o>", got)
	}

	// Overridden results are not cached.
	if got := scope.EvaluateString(y, nil); got != "<x>" {
		t.Errorf("expected %q, got %q", "<x>", got)
	}

	if got := scope.EvaluateExpression(ParseString("$(X)$(Y)"), lookup); got != "x-o<x-o>" {
		t.Errorf("expected %q, got %q", "x-o<x-o>", got)
	}
}

func TestEvaluate_ByKind(t *testing.T) {
	ns := NewNamespace(nil, "test")
	b := mustDeclare(t, ns, KindBoolean, "B")
	s := mustDeclare(t, ns, KindString, "S")
	l := mustDeclare(t, ns, KindStringList, "L")
	p := mustDeclare(t, ns, KindPath, "P")
	pl := mustDeclare(t, ns, KindPathList, "PL")

	e, err := ns.DeclareEnum("E", "debug", "release")
	if err != nil {
		t.Fatalf("DeclareEnum failed: %v", err)
	}

	e2, err := ns.DeclareEnum("E2", "debug", "release")
	if err != nil {
		t.Fatalf("DeclareEnum failed: %v", err)
	}

	table := NewTable(ns)
	table.PushString(b, "yes")
	table.PushString(s, "text")
	table.Push(l, ParseStringList("a b"))
	table.PushString(p, "/a/./b/../c/")
	table.Push(pl, ParseStringList("/x//y a/../b"))
	table.PushString(e, "bogus")
	table.PushString(e2, "release")

	scope := NewScope(table, nil)

	tests := []struct {
		macro    *Macro
		expected any
	}{
		{b, true},
		{s, "text"},
		{l, []string{"a", "b"}},
		{p, "/a/c"},
		{pl, []string{"/x/y", "b"}},
		{e, "debug"},
		{e2, "release"},
	}

	for _, tt := range tests {
		t.Run(tt.macro.Name(), func(t *testing.T) {
			got := scope.Evaluate(tt.macro, nil)

			switch want := tt.expected.(type) {
			case []string:
				list, ok := got.([]string)
				if !ok || !slices.Equal(list, want) {
					t.Errorf("expected %q, got %#v", want, got)
				}
			default:
				if got != want {
					t.Errorf("expected %#v, got %#v", want, got)
				}
			}
		})
	}
}

func TestEvaluate_Defaults(t *testing.T) {
	ns := NewNamespace(nil, "test")
	s := mustDeclare(t, ns, KindString, "S")
	l := mustDeclare(t, ns, KindStringList, "L")
	p := mustDeclare(t, ns, KindPath, "P")

	scope := NewScope(NewTable(ns), nil)

	if got := scope.EvaluateString(s, nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}

	if got := scope.EvaluateStringDefault(s, "def", nil); got != "def" {
		t.Errorf("expected %q, got %q", "def", got)
	}

	if got := scope.EvaluateList(l, nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}

	if got := scope.EvaluatePath(p, "a/./b", nil); got != "a/b" {
		t.Errorf("expected %q, got %q", "a/b", got)
	}

	if scope.EvaluateBool(s, nil) {
		t.Error("expected unset macro to be false")
	}
}

func TestEvaluate_Caching(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")
	l := mustDeclare(t, ns, KindStringList, "L")

	table := NewTable(ns)
	table.Push(x, ParseString("$(L)"))
	table.Push(l, ParseStringList("a b"))

	scope := NewScope(table, nil)

	// Pushing after the scope was created does not affect it.
	table.PushString(x, "changed")

	before := Stats()

	for range 3 {
		if got := scope.EvaluateString(x, nil); got != "a b" {
			t.Fatalf("expected %q, got %q", "a b", got)
		}
	}

	after := Stats()

	if n := after.Evaluations - before.Evaluations; n != 3 {
		t.Errorf("expected 3 evaluations, got %d", n)
	}

	if n := after.EvaluationsComputed - before.EvaluationsComputed; n != 1 {
		t.Errorf("expected 1 computed evaluation, got %d", n)
	}

	// Cached lists are copied out.
	list := scope.EvaluateList(l, nil)
	list[0] = "mutated"

	if got := scope.EvaluateList(l, nil); got[0] != "a" {
		t.Errorf("expected cached list to be unchanged, got %q", got)
	}
}

func TestScope_Subscope(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")
	sdk := ns.DeclareParameter("sdk")
	arch := ns.DeclareParameter("arch")

	table := NewTable(ns)
	table.PushString(x, "none")
	table.PushString(x, "mac", Condition{Parameter: sdk, Pattern: "macosx*"})
	table.PushString(x, "mac-arm", Condition{Parameter: sdk, Pattern: "macosx*"},
		Condition{Parameter: arch, Pattern: "arm64"})

	scope := NewScope(table, map[*Parameter][]string{arch: {"arm64"}})

	if got := scope.EvaluateString(x, nil); got != "none" {
		t.Errorf("expected %q, got %q", "none", got)
	}

	sub := scope.Subscope(sdk, "macosx14.0")
	if got := sub.EvaluateString(x, nil); got != "mac-arm" {
		t.Errorf("expected %q, got %q", "mac-arm", got)
	}

	if again := scope.Subscope(sdk, "macosx14.0"); again != sub {
		t.Error("expected subscope to be cached")
	}

	if vals, ok := sub.Values(arch); !ok || !slices.Equal(vals, []string{"arm64"}) {
		t.Errorf("expected arch to be inherited, got %q (bound=%t)", vals, ok)
	}

	if _, ok := scope.Values(sdk); ok {
		t.Error("expected sdk to be unbound in the parent scope")
	}

	other := sub.SubscopeValues(arch, "x86_64", "i386")
	if got := other.EvaluateString(x, nil); got != "mac" {
		t.Errorf("expected %q, got %q", "mac", got)
	}
}

func TestEvaluateAssignment(t *testing.T) {
	ns := NewNamespace(nil, "test")
	x := mustDeclare(t, ns, KindString, "X")

	table := NewTable(ns)
	table.PushString(x, "low")
	table.Push(x, ParseString("high $(inherited)"))

	scope := NewScope(table, nil)
	first := table.Lookup(x)

	if got := EvaluateAssignment(first, x, scope, nil); got != "high low" {
		t.Errorf("expected %q, got %q", "high low", got)
	}

	if got := EvaluateAssignment(first.Next(), x, scope, nil); got != "low" {
		t.Errorf("expected %q, got %q", "low", got)
	}
}

func BenchmarkEvaluateString(b *testing.B) {
	ns := NewNamespace(nil, "bench")
	names := []string{"A", "B", "C", "D"}
	table := NewTable(ns)

	var last *Macro

	for i, name := range names {
		m, _ := ns.DeclareString(name)
		table.PushString(m, name)

		if i > 0 {
			table.Push(m, ParseString("$(inherited)/$("+names[i-1]+":lower)"))
		}

		last = m
	}

	scope := NewScope(table, nil)

	b.ResetTimer()

	for b.Loop() {
		scope.EvaluateString(last, func(*Macro) *Expression { return nil })
	}
}

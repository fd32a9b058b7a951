package lang

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Assignment is one node in a macro's chain of values, highest precedence
// first. Nodes are immutable once linked, so chains are freely shared
// between tables.
type Assignment struct {
	Expression *Expression
	Conditions ConditionSet
	next       *Assignment
}

// Next returns the lower-precedence assignment, or nil.
func (a *Assignment) Next() *Assignment { return a.next }

// FirstMatchingCondition returns the first assignment reachable from a whose
// conditions all hold for values. Unconditional assignments always match.
// It is safe to call on a nil receiver.
func (a *Assignment) FirstMatchingCondition(values map[*Parameter][]string) *Assignment {
	for v := a; v != nil; v = v.next {
		if v.Conditions.Evaluate(values) {
			return v
		}
	}

	return nil
}

// FirstMatchingConditionSet returns the first assignment reachable from a
// whose condition set equals set.
func (a *Assignment) FirstMatchingConditionSet(set ConditionSet) *Assignment {
	for v := a; v != nil; v = v.next {
		if v.Conditions.Equal(set) {
			return v
		}
	}

	return nil
}

// Chain yields a and every assignment after it.
func (a *Assignment) Chain() iter.Seq[*Assignment] {
	return func(yield func(*Assignment) bool) {
		for v := a; v != nil; v = v.next {
			if !yield(v) {
				return
			}
		}
	}
}

func (a *Assignment) String() string {
	return a.Conditions.String() + "'" + a.Expression.Source() + "'"
}

// Dump returns the chain starting at a as "[c=v]'expr' -> 'expr'".
func (a *Assignment) Dump() string {
	var sb strings.Builder

	for v := range a.Chain() {
		if v != a {
			sb.WriteString(" -> ")
		}

		sb.WriteString(v.String())
	}

	return sb.String()
}

func (a *Assignment) hasUnconditionalLiteral() bool {
	for v := range a.Chain() {
		if v.Conditions == nil && v.Expression.IsLiteral() {
			return true
		}
	}

	return false
}

// insertCopies returns src's chain linked in front of dst. Nodes are shared
// when nothing follows them or when evaluation could never reach dst.
func insertCopies(src, dst *Assignment) *Assignment {
	if dst == nil || src.hasUnconditionalLiteral() {
		return src
	}

	var link func(*Assignment) *Assignment

	link = func(a *Assignment) *Assignment {
		next := dst
		if a.next != nil {
			next = link(a.next)
		}

		return &Assignment{Expression: a.Expression, Conditions: a.Conditions, next: next}
	}

	return link(src)
}

// Table maps macros of one namespace to their assignment chains.
type Table struct {
	namespace   *Namespace
	assignments map[*Macro]*Assignment
}

// NewTable returns an empty table over ns.
func NewTable(ns *Namespace) *Table {
	return &Table{namespace: ns, assignments: map[*Macro]*Assignment{}}
}

// Clone returns a table with the same assignments. Later pushes to either
// table do not affect the other.
func (t *Table) Clone() *Table {
	return &Table{namespace: t.namespace, assignments: maps.Clone(t.assignments)}
}

// Namespace returns the namespace the table's macros belong to.
func (t *Table) Namespace() *Namespace { return t.namespace }

// Len returns the number of macros with at least one assignment.
func (t *Table) Len() int { return len(t.assignments) }

// IsEmpty reports whether the table has no assignments.
func (t *Table) IsEmpty() bool { return len(t.assignments) == 0 }

// Contains reports whether m has an assignment.
func (t *Table) Contains(m *Macro) bool {
	_, ok := t.assignments[m]

	return ok
}

// Lookup returns the highest-precedence assignment for m, or nil.
func (t *Table) Lookup(m *Macro) *Assignment { return t.assignments[m] }

// Remove drops every assignment for m.
func (t *Table) Remove(m *Macro) { delete(t.assignments, m) }

// Macros yields the macros with assignments, sorted by name.
func (t *Table) Macros() iter.Seq[*Macro] {
	keys := make([]*Macro, 0, len(t.assignments))
	for m := range t.assignments {
		keys = append(keys, m)
	}

	slices.SortFunc(keys, func(a, b *Macro) int { return strings.Compare(a.name, b.name) })

	return slices.Values(keys)
}

// Push assigns expr to m ahead of any existing assignment. The existing
// chain stays reachable through "$(inherited)".
//
// Push panics if m is not visible in the table's namespace or if the
// expression's arity does not match m's kind.
func (t *Table) Push(m *Macro, expr *Expression, conds ...Condition) {
	t.push(m, expr, NewConditionSet(conds...))
}

func (t *Table) push(m *Macro, expr *Expression, conds ConditionSet) {
	if t.namespace.Lookup(m.name) != m {
		panic("lang: macro " + m.name + " is not declared in namespace " + t.namespace.String())
	}

	if expr.list != m.kind.IsList() {
		panic("lang: expression arity does not match " + m.kind.String() + " macro " + m.name)
	}

	t.assignments[m] = &Assignment{Expression: expr, Conditions: conds, next: t.assignments[m]}
}

// PushBoolean assigns the literal YES or NO to m.
func (t *Table) PushBoolean(m *Macro, b bool, conds ...Condition) {
	t.Push(m, ParseLiteralString(FormatBool(b)), conds...)
}

// PushString assigns the literal s to a scalar macro.
func (t *Table) PushString(m *Macro, s string, conds ...Condition) {
	t.Push(m, ParseLiteralString(s), conds...)
}

// PushStringList assigns the literal items to a list macro.
func (t *Table) PushStringList(m *Macro, items []string, conds ...Condition) {
	t.Push(m, ParseLiteralStringList(items), conds...)
}

// PushContentsOf links every chain of other in front of the table's own
// chains. The receiver keeps no reference to other itself.
func (t *Table) PushContentsOf(other *Table) {
	for m, a := range other.assignments {
		t.assignments[m] = insertCopies(a, t.assignments[m])
	}
}

// BindConditionParameter returns a table with p fixed to the first of
// values that any condition on p matches. Assignments whose condition on p
// matches that value lose the condition; those whose condition does not
// match are dropped. Macros with no matching condition on p keep their
// chains unchanged.
func (t *Table) BindConditionParameter(p *Parameter, values ...string) *Table {
	matchers := make([]func(Condition) bool, len(values))
	for i, v := range values {
		matchers[i] = func(c Condition) bool { return Fnmatch(c.Pattern, v) }
	}

	return t.bind(p, matchers)
}

// BindConditionParameterFunc is BindConditionParameter with a custom test
// for each condition on p.
func (t *Table) BindConditionParameterFunc(p *Parameter, match func(Condition) bool) *Table {
	return t.bind(p, []func(Condition) bool{match})
}

func (t *Table) bind(p *Parameter, matchers []func(Condition) bool) *Table {
	out := NewTable(t.namespace)

	for m, first := range t.assignments {
		match := effectiveMatcher(first, p, matchers)
		if match == nil {
			out.assignments[m] = first

			continue
		}

		var bindPush func(a *Assignment)

		bindPush = func(a *Assignment) {
			if a.next != nil {
				bindPush(a.next)
			}

			c, ok := a.Conditions.Get(p)

			switch {
			case !ok:
				out.push(m, a.Expression, a.Conditions)
			case match(c):
				out.push(m, a.Expression, a.Conditions.Without(p))
			}
		}

		bindPush(first)
	}

	return out
}

// effectiveMatcher returns the first matcher that accepts a condition on p
// somewhere in the chain, or nil.
func effectiveMatcher(
	first *Assignment,
	p *Parameter,
	matchers []func(Condition) bool,
) func(Condition) bool {
	for _, match := range matchers {
		for a := range first.Chain() {
			if c, ok := a.Conditions.Get(p); ok && match(c) {
				return match
			}
		}
	}

	return nil
}

// Dump returns every chain in the table, sorted by macro name.
func (t *Table) Dump() string {
	var sb strings.Builder

	for m := range t.Macros() {
		sb.WriteString(t.DumpMacro(m))
	}

	return sb.String()
}

// DumpMacro returns m's chain as "'NAME' := ... (type: kind)", or "(none)".
func (t *Table) DumpMacro(m *Macro) string {
	a := t.assignments[m]
	if a == nil {
		return "(none)\n"
	}

	return "'" + m.name + "' := " + a.Dump() + " (type: " + m.kind.String() + ")\n"
}

// lookupWithOverride returns the chain for m with lookup's expression, if
// any, placed in front as an unconditional assignment.
func (t *Table) lookupWithOverride(m *Macro, lookup Lookup) *Assignment {
	if lookup != nil {
		if expr := lookup(m); expr != nil {
			return &Assignment{Expression: expr, next: t.assignments[m]}
		}
	}

	return t.assignments[m]
}

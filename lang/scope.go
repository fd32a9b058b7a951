package lang

import (
	"maps"
	"slices"
	"strconv"
	"sync"
)

// Scope evaluates macros against a table with fixed condition parameter
// values. Results of evaluations without a Lookup are cached, so a Scope
// must not outlive changes to the table it was made from; NewScope takes a
// snapshot for that reason.
//
// A Scope is safe for concurrent use.
type Scope struct {
	table     *Table
	values    map[*Parameter][]string
	strings   sync.Map // *Macro -> string
	lists     sync.Map // *Macro -> []string
	subscopes sync.Map // subscopeKey -> *Scope
}

type subscopeKey struct {
	param *Parameter
	key   string
}

// bindingKey encodes values so that distinct lists, including an empty list
// and a list of one empty string, never share a key.
func bindingKey(values []string) string {
	b := strconv.AppendInt(nil, int64(len(values)), 10)

	for _, v := range values {
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(len(v)), 10)
		b = append(b, ':')
		b = append(b, v...)
	}

	return string(b)
}

// NewScope returns a scope over a snapshot of table with the given
// parameter values.
func NewScope(table *Table, values map[*Parameter][]string) *Scope {
	return newScope(table.Clone(), maps.Clone(values))
}

func newScope(table *Table, values map[*Parameter][]string) *Scope {
	if values == nil {
		values = map[*Parameter][]string{}
	}

	return &Scope{table: table, values: values}
}

// Table returns the table the scope evaluates. It must not be modified.
func (s *Scope) Table() *Table { return s.table }

// Namespace returns the namespace of the scope's table.
func (s *Scope) Namespace() *Namespace { return s.table.namespace }

// Values returns the values bound to p, and whether p is bound at all.
func (s *Scope) Values(p *Parameter) ([]string, bool) {
	v, ok := s.values[p]

	return slices.Clone(v), ok
}

// Subscope returns a scope with p bound to the single value.
func (s *Scope) Subscope(p *Parameter, value string) *Scope {
	return s.SubscopeValues(p, value)
}

// SubscopeValues returns a scope with p bound to values and every other
// parameter as in s. Subscopes are cached, so repeated calls share caches.
func (s *Scope) SubscopeValues(p *Parameter, values ...string) *Scope {
	key := subscopeKey{param: p, key: bindingKey(values)}

	if sub, ok := s.subscopes.Load(key); ok {
		return sub.(*Scope)
	}

	combined := maps.Clone(s.values)
	combined[p] = slices.Clone(values)

	sub, _ := s.subscopes.LoadOrStore(key, newScope(s.table, combined))

	return sub.(*Scope)
}

// EvaluateExpression evaluates a scalar expression in the scope.
func (s *Scope) EvaluateExpression(expr *Expression, lookup Lookup) string {
	stats.exprEvaluations.Add(1)

	if lit, ok := expr.LiteralString(); ok {
		return lit
	}

	var out resultBuilder

	expr.run(&evalContext{scope: s, lookup: lookup}, &out, true)

	return out.String()
}

// EvaluateListExpression evaluates an expression in the scope as a list.
func (s *Scope) EvaluateListExpression(expr *Expression, lookup Lookup) []string {
	stats.exprEvaluations.Add(1)

	var out resultBuilder

	expr.run(&evalContext{scope: s, lookup: lookup}, &out, false)

	return out.list()
}

// EvaluateString returns the value of m as a single string. A macro with no
// matching assignment evaluates to "".
func (s *Scope) EvaluateString(m *Macro, lookup Lookup) string {
	stats.evaluations.Add(1)

	compute := func() string {
		stats.evaluationsComputed.Add(1)

		v := s.table.lookupWithOverride(m, lookup).FirstMatchingCondition(s.values)
		if v == nil {
			return ""
		}

		return EvaluateAssignment(v, m, s, lookup)
	}

	if lookup != nil {
		return compute()
	}

	if v, ok := s.strings.Load(m); ok {
		return v.(string)
	}

	v, _ := s.strings.LoadOrStore(m, compute())

	return v.(string)
}

// EvaluateStringDefault is EvaluateString returning def in place of "".
func (s *Scope) EvaluateStringDefault(m *Macro, def string, lookup Lookup) string {
	if v := s.EvaluateString(m, lookup); v != "" {
		return v
	}

	return def
}

// EvaluateBool returns the value of m interpreted by ParseBool.
func (s *Scope) EvaluateBool(m *Macro, lookup Lookup) bool {
	return ParseBool(s.EvaluateString(m, lookup))
}

// EvaluatePath returns the normalized value of m, or of def when m is empty.
func (s *Scope) EvaluatePath(m *Macro, def string, lookup Lookup) string {
	return NormalizePath(s.EvaluateStringDefault(m, def, lookup))
}

// EvaluateEnum returns the value of m when it is one of m's enumeration
// values and the first enumeration value otherwise.
func (s *Scope) EvaluateEnum(m *Macro, lookup Lookup) string {
	v := s.EvaluateString(m, lookup)

	if len(m.enumValues) == 0 || slices.Contains(m.enumValues, v) {
		return v
	}

	return m.enumValues[0]
}

// EvaluateList returns the value of m as a list of strings.
func (s *Scope) EvaluateList(m *Macro, lookup Lookup) []string {
	return s.evaluateList(m, lookup, false)
}

// EvaluatePathList is EvaluateList with each element normalized.
func (s *Scope) EvaluatePathList(m *Macro, lookup Lookup) []string {
	return s.evaluateList(m, lookup, true)
}

func (s *Scope) evaluateList(m *Macro, lookup Lookup, paths bool) []string {
	stats.evaluations.Add(1)

	compute := func() []string {
		stats.evaluationsComputed.Add(1)

		v := s.table.lookupWithOverride(m, lookup).FirstMatchingCondition(s.values)
		if v == nil {
			return []string{}
		}

		var out resultBuilder

		v.Expression.run(&evalContext{scope: s, macro: m, value: v, lookup: lookup}, &out, false)

		list := out.list()
		if paths {
			for i, p := range list {
				list[i] = NormalizePath(p)
			}
		}

		return list
	}

	if lookup != nil {
		return compute()
	}

	if v, ok := s.lists.Load(m); ok {
		return slices.Clone(v.([]string))
	}

	v, _ := s.lists.LoadOrStore(m, compute())

	return slices.Clone(v.([]string))
}

// Evaluate returns the value of m in the Go type its kind calls for: bool
// for boolean macros, []string for list kinds and string otherwise.
func (s *Scope) Evaluate(m *Macro, lookup Lookup) any {
	switch m.kind {
	case KindBoolean:
		return s.EvaluateBool(m, lookup)
	case KindPath:
		return s.EvaluatePath(m, "", lookup)
	case KindEnum:
		return s.EvaluateEnum(m, lookup)
	case KindStringList:
		return s.EvaluateList(m, lookup)
	case KindPathList:
		return s.EvaluatePathList(m, lookup)
	default:
		return s.EvaluateString(m, lookup)
	}
}

// EvaluateAssignment evaluates one assignment of m as a string. The
// assignment's chain supplies "$(inherited)".
func EvaluateAssignment(asgn *Assignment, m *Macro, scope *Scope, lookup Lookup) string {
	if lit, ok := asgn.Expression.LiteralString(); ok {
		return lit
	}

	var out resultBuilder

	asgn.Expression.run(&evalContext{scope: scope, macro: m, value: asgn, lookup: lookup}, &out, true)

	return out.String()
}

package lang

import (
	"log/slog"
	"slices"
	"strings"
)

// KeyCondition is one "[param=pattern]" qualifier of a settings key.
type KeyCondition struct {
	Parameter string
	Pattern   string
}

// SplitConditionKey splits a settings key such as "CFLAGS[sdk=iphone*]"
// into its macro name and conditions. It reports false when key is not of
// that form.
func SplitConditionKey(key string) (name string, conds []KeyCondition, ok bool) {
	i := 0
	for i < len(key) && isNameChar(key[i]) {
		i++
	}

	if i == 0 {
		return "", nil, false
	}

	name, rest := key[:i], key[i:]

	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}

		param, pattern, found := strings.Cut(rest[1:end], "=")
		if !found || param == "" || !isValidName(param) {
			return "", nil, false
		}

		conds = append(conds, KeyCondition{Parameter: param, Pattern: pattern})
		rest = rest[end+1:]
	}

	return name, conds, true
}

func isValidName(s string) bool {
	for i := range len(s) {
		if !isNameChar(s[i]) {
			return false
		}
	}

	return s != ""
}

// TableOption configures ParseTable.
type TableOption func(*tableOptions)

type tableOptions struct {
	associated  map[string]Kind
	handler     DiagnosticHandler
	userDefined bool
}

// WithUserDefined declares unknown settings as user-defined macros instead
// of failing with ErrUnknownMacroType.
func WithUserDefined(allow bool) TableOption {
	return func(o *tableOptions) { o.userDefined = allow }
}

// WithAssociatedKinds declares an unknown setting with the kind mapped to
// the first pattern, in sorted order, that its key contains. For example
// {"_DEPLOYMENT_TARGET": KindString} makes FOO_DEPLOYMENT_TARGET a string.
func WithAssociatedKinds(kinds map[string]Kind) TableOption {
	return func(o *tableOptions) { o.associated = kinds }
}

// WithDiagnostics sets the handler receiving parse diagnostics for every
// value in the table.
func WithDiagnostics(handler DiagnosticHandler) TableOption {
	return func(o *tableOptions) { o.handler = handler }
}

// ParseTable builds a table from settings, visiting keys in sorted order.
// Values must be strings or string slices ([]string, or []any holding only
// strings). Keys that are not of the NAME[param=pattern] form are used
// verbatim as macro names.
func (ns *Namespace) ParseTable(settings map[string]any, opts ...TableOption) (*Table, error) {
	var o tableOptions

	for _, opt := range opts {
		opt(&o)
	}

	table := NewTable(ns)

	for _, key := range sortedKeys(settings) {
		value := settings[key]

		name, keyConds, ok := SplitConditionKey(key)
		if !ok {
			name, keyConds = key, nil
		}

		m, err := ns.settingMacro(key, name, &o)
		if err != nil {
			return nil, err
		}

		if items, isAny := value.([]any); isAny {
			strs, valid := stringItems(items)
			if !valid {
				return nil, inconsistent(m, value)
			}

			value = strs
		}

		expr := ns.ParseForMacro(m, value, o.handler)
		if expr == nil {
			return nil, inconsistent(m, value)
		}

		conds := make(ConditionSet, 0, len(keyConds))
		for _, kc := range keyConds {
			conds = append(conds, Condition{
				Parameter: ns.DeclareParameter(kc.Parameter),
				Pattern:   kc.Pattern,
			})
		}

		table.push(m, expr, NewConditionSet(conds...))
	}

	return table, nil
}

func (ns *Namespace) settingMacro(key, name string, o *tableOptions) (*Macro, error) {
	if name == "" {
		return nil, ErrInvalidName.With(slog.String("key", key))
	}

	if m := ns.Lookup(name); m != nil {
		return m, nil
	}

	patterns := make([]string, 0, len(o.associated))
	for p := range o.associated {
		patterns = append(patterns, p)
	}

	slices.Sort(patterns)

	for _, p := range patterns {
		if strings.Contains(key, p) {
			return ns.LookupOrDeclare(o.associated[p], name)
		}
	}

	if o.userDefined {
		return ns.LookupOrDeclare(KindUserDefined, name)
	}

	return nil, ErrUnknownMacroType.With(slog.String("name", name))
}

func stringItems(items []any) ([]string, bool) {
	out := make([]string, len(items))

	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}

		out[i] = s
	}

	return out, true
}

func inconsistent(m *Macro, value any) error {
	return ErrInconsistentDefinition.With(
		slog.String("name", m.name),
		slog.String("kind", m.kind.String()),
		slog.String("value_type", resultTypeName(value)),
	)
}

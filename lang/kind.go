package lang

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the type of value a macro evaluates to.
//
// The numeric values are stable and appear in the binary encoding.
type Kind uint8

// Macro kinds.
const (
	KindBoolean Kind = iota
	KindString
	KindStringList
	KindUserDefined
	KindPath
	KindPathList
	KindEnum
	kindCount
)

var kindName = [...]string{
	KindBoolean:     "boolean",
	KindString:      "string",
	KindStringList:  "stringList",
	KindUserDefined: "userDefined",
	KindPath:        "path",
	KindPathList:    "pathList",
	KindEnum:        "enum",
}

// String returns the kind name used in dumps and settings documents.
func (k Kind) String() string {
	if k < kindCount {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsList reports whether values of this kind are string lists.
func (k Kind) IsList() bool {
	switch k {
	case KindStringList, KindUserDefined, KindPathList:
		return true
	default:
		return false
	}
}

// Kinds returns an iterator over all valid kinds.
func Kinds() iter.Seq[Kind] {
	return func(yield func(Kind) bool) {
		for k := range kindCount {
			if !yield(k) {
				return
			}
		}
	}
}

// ParseKind returns the kind with the given name, case-insensitively.
// The aliases "bool", "list" and "user" are accepted as well.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "bool":
		return KindBoolean, nil
	case "list":
		return KindStringList, nil
	case "user":
		return KindUserDefined, nil
	}

	for k := range Kinds() {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}

	return 0, ErrUnknownKind.With(slog.String("kind", name))
}

// Macro is a declared macro. Two macros are the same declaration iff they
// are the same pointer.
type Macro struct {
	name       string
	kind       Kind
	enumValues []string
}

// Name returns the declared name.
func (m *Macro) Name() string { return m.name }

// Kind returns the declared kind.
func (m *Macro) Kind() Kind { return m.kind }

// EnumValues returns the allowed values of an enum macro.
// The first value is the default.
func (m *Macro) EnumValues() []string { return slices.Clone(m.enumValues) }

func (m *Macro) String() string { return m.name }

// LogValue implements slog.LogValuer.
func (m *Macro) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", m.name),
		slog.String("kind", m.kind.String()),
	)
}

// Parameter is a declared condition parameter such as "sdk" or "arch".
type Parameter struct {
	name string
}

// Name returns the parameter name.
func (p *Parameter) Name() string { return p.name }

func (p *Parameter) String() string { return p.name }

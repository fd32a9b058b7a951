package lang

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// ToMap converts the table to a settings map of the form ParseTable reads.
// Each key is the macro name followed by its conditions, and each value
// is the source of the highest-precedence assignment with that key; the
// assignments it shadows are dropped.
func (t *Table) ToMap() map[string]any {
	result := make(map[string]any, len(t.assignments))

	for m, first := range t.assignments {
		for a := range first.Chain() {
			key := m.name + a.Conditions.String()
			if _, ok := result[key]; !ok {
				result[key] = a.Expression.source
			}
		}
	}

	return result
}

// MarshalJSON implements json.Marshaler for Table.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// MarshalYAML implements yaml.BytesMarshaler for Table. Keys are sorted.
func (t *Table) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(sortedMapSlice(t.ToMap()))
}

// ToMap converts the document back to a settings map, with declarations
// under DeclareKey.
func (s *Settings) ToMap() map[string]any {
	result := make(map[string]any, len(s.Values)+1)

	for key, v := range s.Values {
		result[key] = v
	}

	if len(s.Declarations) > 0 {
		decls := make(map[string]any, len(s.Declarations))
		for name, kind := range s.Declarations {
			decls[name] = kind.String()
		}

		result[DeclareKey] = decls
	}

	return result
}

// sortedMapSlice orders m, and any maps nested in it, by key.
func sortedMapSlice(m map[string]any) yaml.MapSlice {
	slice := make(yaml.MapSlice, 0, len(m))

	for _, key := range sortedKeys(m) {
		v := m[key]
		if nested, ok := v.(map[string]any); ok {
			v = sortedMapSlice(nested)
		}

		slice = append(slice, yaml.MapItem{Key: key, Value: v})
	}

	return slice
}

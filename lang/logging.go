package lang

import (
	"maps"
	"reflect"
	"slices"
)

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}

// resultTypeName names the dynamic type of a settings value for error
// attributes.
func resultTypeName(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}

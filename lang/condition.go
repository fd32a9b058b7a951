package lang

import (
	"slices"
	"strings"
)

// Condition qualifies an assignment on one parameter with a shell wildcard
// pattern such as "iphoneos*".
type Condition struct {
	Parameter *Parameter
	Pattern   string
}

// Match reports whether the condition holds for the given parameter values.
// A parameter with no values matches only the pattern "*".
func (c Condition) Match(values map[*Parameter][]string) bool {
	vals, ok := values[c.Parameter]
	if !ok {
		return c.Pattern == "*"
	}

	for _, v := range vals {
		if Fnmatch(c.Pattern, v) {
			return true
		}
	}

	return false
}

func (c Condition) String() string {
	return "[" + c.Parameter.name + "=" + c.Pattern + "]"
}

// ConditionSet is a conjunction of conditions. The order is kept only for
// display.
type ConditionSet []Condition

// NewConditionSet returns a set holding conds, or nil if there are none.
func NewConditionSet(conds ...Condition) ConditionSet {
	if len(conds) == 0 {
		return nil
	}

	return slices.Clone(conds)
}

// Evaluate reports whether every condition in the set matches.
func (cs ConditionSet) Evaluate(values map[*Parameter][]string) bool {
	for _, c := range cs {
		if !c.Match(values) {
			return false
		}
	}

	return true
}

// Get returns the first condition on p.
func (cs ConditionSet) Get(p *Parameter) (Condition, bool) {
	for _, c := range cs {
		if c.Parameter == p {
			return c, true
		}
	}

	return Condition{}, false
}

// Without returns the set with every condition on p removed. The result is
// nil when nothing remains.
func (cs ConditionSet) Without(p *Parameter) ConditionSet {
	var out ConditionSet

	for _, c := range cs {
		if c.Parameter != p {
			out = append(out, c)
		}
	}

	return out
}

// Equal reports whether both sets hold the same conditions in the same order.
func (cs ConditionSet) Equal(other ConditionSet) bool {
	return slices.Equal(cs, other)
}

func (cs ConditionSet) String() string {
	var sb strings.Builder

	for _, c := range cs {
		sb.WriteString(c.String())
	}

	return sb.String()
}

// Fnmatch reports whether s matches the shell wildcard pattern. It supports
// "*", "?", bracket expressions with "!" or "^" negation and ranges, and
// backslash escapes. Slashes receive no special treatment.
func Fnmatch(pattern, s string) bool {
	px, sx := 0, 0
	// Backtrack point for the most recent star.
	starP, starS := -1, -1

	for sx < len(s) {
		if px < len(pattern) {
			switch c := pattern[px]; c {
			case '*':
				starP, starS = px, sx
				px++

				continue

			case '?':
				px++
				sx++

				continue

			case '[':
				if ok, n, valid := matchBracket(pattern[px:], s[sx]); valid {
					if ok {
						px += n
						sx++

						continue
					}
				} else if s[sx] == '[' {
					px++
					sx++

					continue
				}

			case '\\':
				if px+1 < len(pattern) && pattern[px+1] == s[sx] {
					px += 2
					sx++

					continue
				}

				if px+1 == len(pattern) && s[sx] == '\\' {
					px++
					sx++

					continue
				}

			default:
				if c == s[sx] {
					px++
					sx++

					continue
				}
			}
		}

		if starP < 0 {
			return false
		}

		starS++
		px, sx = starP+1, starS
	}

	for px < len(pattern) && pattern[px] == '*' {
		px++
	}

	return px == len(pattern)
}

// matchBracket matches b against the bracket expression at the start of
// pattern. It returns whether b matched, the length of the expression and
// whether the expression was well formed.
func matchBracket(pattern string, b byte) (matched bool, n int, valid bool) {
	i := 1
	negate := false

	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		negate = true
		i++
	}

	first := true

	for i < len(pattern) {
		c := pattern[i]
		if c == ']' && !first {
			return matched != negate, i + 1, true
		}

		first = false

		if c == '\\' && i+1 < len(pattern) {
			i++
			c = pattern[i]
		}

		lo, hi := c, c

		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			hi = pattern[i+2]
			if hi == '\\' && i+3 < len(pattern) {
				i++
				hi = pattern[i+2]
			}

			i += 2
		}

		if lo <= b && b <= hi {
			matched = true
		}

		i++
	}

	return false, 0, false
}

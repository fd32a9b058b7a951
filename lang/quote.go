package lang

import (
	"strings"
)

// Quote returns s in quoted list form: a single list element that parses
// back to s. The empty string becomes "" and whitespace, backslashes and
// quotes are escaped with a backslash.
func Quote(s string) string {
	var sb strings.Builder

	writeQuoted(&sb, s)

	return sb.String()
}

// QuoteList returns items in quoted list form, separated by single spaces.
func QuoteList(items []string) string {
	var sb strings.Builder

	for i, s := range items {
		if i > 0 {
			sb.WriteByte(' ')
		}

		writeQuoted(&sb, s)
	}

	return sb.String()
}

func writeQuoted(sb *strings.Builder, s string) {
	if s == "" {
		sb.WriteString(`""`)

		return
	}

	for i := range len(s) {
		switch c := s[i]; c {
		case ' ', '\t', '\r', '\n', '\\', '"', '\'':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
}

// ParseBool reports whether s spells a true value: its first byte is one
// of y, Y, t, T or a digit from 1 to 9.
func ParseBool(s string) bool {
	if s == "" {
		return false
	}

	switch c := s[0]; {
	case c == 'y', c == 'Y', c == 't', c == 'T':
		return true
	default:
		return c >= '1' && c <= '9'
	}
}

// FormatBool returns YES or NO.
func FormatBool(b bool) string {
	if b {
		return "YES"
	}

	return "NO"
}

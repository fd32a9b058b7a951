package lang

import (
	"path/filepath"
	"strings"
)

// Lexical path helpers used by the path operators and path macros. They
// never touch the filesystem and treat '/' as the only separator.

func isAbsPath(p string) bool { return p != "" && p[0] == '/' }

// dirname returns p without its last component. A path whose only slash is
// the leading one keeps it; a path with no slash has an empty dirname.
func dirname(p string) string {
	i := strings.LastIndexByte(p, '/')

	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	default:
		return p[:i]
	}
}

// basename returns the text after the last slash.
func basename(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// suffixIndex returns the index of the '.' starting the suffix of the last
// component, or -1.
func suffixIndex(p string) int {
	for i := len(p) - 1; i >= 0; i-- {
		switch p[i] {
		case '.':
			return i
		case '/':
			return -1
		}
	}

	return -1
}

// fileSuffix returns the suffix of the last component including its '.'.
func fileSuffix(p string) string {
	if i := suffixIndex(p); i >= 0 {
		return p[i:]
	}

	return ""
}

// fileExtension returns the suffix of the last component without its '.'.
func fileExtension(p string) string {
	if i := suffixIndex(p); i >= 0 {
		return p[i+1:]
	}

	return ""
}

// withoutSuffix returns p with the suffix of the last component removed.
func withoutSuffix(p string) string {
	if i := suffixIndex(p); i >= 0 {
		return p[:i]
	}

	return p
}

// basenameWithoutSuffix returns the last component up to its last '.'.
func basenameWithoutSuffix(p string) string {
	return withoutSuffix(basename(p))
}

// joinPath appends rhs to p. An absolute rhs, or an empty p, yields rhs.
func joinPath(p, rhs string) string {
	switch {
	case p == "" || isAbsPath(rhs):
		return rhs
	case rhs == "":
		return p
	case p[len(p)-1] == '/':
		return p + rhs
	default:
		return p + "/" + rhs
	}
}

// isNormalized reports whether p has no empty, "." or ".." components.
func isNormalized(p string) bool {
	rest := p
	if isAbsPath(rest) {
		rest = rest[1:]
	}

	for comp := range strings.SplitSeq(rest, "/") {
		switch comp {
		case "", ".", "..":
			return false
		}
	}

	return true
}

// normalizePath removes empty and "." components and resolves ".." where a
// preceding component exists. Relative paths keep their ".." components
// unless removeDotDot is set. The path "." is left alone.
func normalizePath(p string, removeDotDot bool) string {
	if p == "." || isNormalized(p) {
		return p
	}

	abs := isAbsPath(p)
	result := ""

	if abs {
		result = "/"
	}

	removeDotDot = removeDotDot || abs

	for comp := range strings.SplitSeq(p, "/") {
		switch comp {
		case "", ".":
		case "..":
			if removeDotDot && result != "" && basename(result) != ".." {
				result = dirname(result)
			} else {
				result = joinPath(result, comp)
			}
		default:
			result = joinPath(result, comp)
		}
	}

	return result
}

// NormalizePath returns the lexically normalized form of p, resolving ".."
// components in relative paths too.
func NormalizePath(p string) string { return normalizePath(p, true) }

// isAncestorPath reports whether the absolute path anc is a proper ancestor
// of the absolute path p.
func isAncestorPath(anc, p string) bool {
	anc, p = NormalizePath(anc), NormalizePath(p)

	for p != "/" && p != "" {
		p = dirname(p)
		if p == anc {
			return true
		}
	}

	return false
}

// relativePath returns target expressed relative to base. Both must be
// absolute.
func relativePath(base, target string) string {
	rel, err := filepath.Rel(NormalizePath(base), NormalizePath(target))
	if err != nil {
		return target
	}

	return filepath.ToSlash(rel)
}

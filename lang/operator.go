package lang

import (
	"crypto/md5"
	"encoding/hex"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RetrievalOperator transforms each element of a value, as in $(X:upper).
type RetrievalOperator uint8

// Retrieval operators. The numeric values appear in the binary encoding.
const (
	RetrieveQuote RetrievalOperator = iota
	RetrieveUpper
	RetrieveLower
	RetrieveIdentifier
	RetrieveRFC1034Identifier
	RetrieveC99ExtIdentifier
	RetrieveMD5
	RetrieveStripSlash
	RetrieveDir
	RetrieveFile
	RetrieveBase
	RetrieveSuffix
	RetrieveStandardizePath
	RetrieveNot
	retrievalCount
)

var retrievalName = [...]string{
	RetrieveQuote:             "quote",
	RetrieveUpper:             "upper",
	RetrieveLower:             "lower",
	RetrieveIdentifier:        "identifier",
	RetrieveRFC1034Identifier: "rfc1034identifier",
	RetrieveC99ExtIdentifier:  "c99extidentifier",
	RetrieveMD5:               "__md5",
	RetrieveStripSlash:        "__stripslash",
	RetrieveDir:               "dir",
	RetrieveFile:              "file",
	RetrieveBase:              "base",
	RetrieveSuffix:            "suffix",
	RetrieveStandardizePath:   "standardizepath",
	RetrieveNot:               "not",
}

// ParseRetrievalOperator returns the retrieval operator with the given name.
func ParseRetrievalOperator(name string) (RetrievalOperator, bool) {
	for op := range retrievalCount {
		if retrievalName[op] == name {
			return op, true
		}
	}

	return 0, false
}

// RetrievalOperators returns every retrieval operator in code order.
func RetrievalOperators() iter.Seq[RetrievalOperator] {
	return func(yield func(RetrievalOperator) bool) {
		for op := range retrievalCount {
			if !yield(op) {
				return
			}
		}
	}
}

func (op RetrievalOperator) String() string {
	if op < retrievalCount {
		return retrievalName[op]
	}

	return "RetrievalOperator(" + strconv.Itoa(int(op)) + ")"
}

// Apply returns the operator applied to s.
func (op RetrievalOperator) Apply(s string) string {
	switch op {
	case RetrieveQuote:
		return Quote(s)

	case RetrieveUpper:
		return cases.Upper(language.Und).String(s)

	case RetrieveLower:
		return cases.Lower(language.Und).String(s)

	case RetrieveIdentifier:
		return mangleIdentifier(s, identC)

	case RetrieveRFC1034Identifier:
		return mangleIdentifier(s, identRFC1034)

	case RetrieveC99ExtIdentifier:
		return c99Identifier(s)

	case RetrieveMD5:
		sum := md5.Sum([]byte(s))

		return hex.EncodeToString(sum[:])

	case RetrieveStripSlash:
		return strings.TrimPrefix(s, "/")

	case RetrieveDir:
		dir := dirname(s)
		if dir == "" {
			return "./"
		}

		if strings.HasSuffix(dir, "/") {
			return dir
		}

		return dir + "/"

	case RetrieveFile:
		return basename(s)

	case RetrieveBase:
		return basenameWithoutSuffix(s)

	case RetrieveSuffix:
		return fileSuffix(s)

	case RetrieveStandardizePath:
		return normalizePath(s, false)

	case RetrieveNot:
		if s != "YES" {
			return "YES"
		}

		return "NO"

	default:
		return s
	}
}

// ReplacementOperator replaces part of each element of a value with an
// operand, as in $(X:suffix=.o).
type ReplacementOperator uint8

// Replacement operators. The numeric values appear in the binary encoding.
const (
	ReplaceDir ReplacementOperator = iota
	ReplaceFile
	ReplaceBase
	ReplaceSuffix
	ReplaceDefault
	ReplaceRelativeTo
	ReplaceIsAncestor
	replacementCount
)

var replacementName = [...]string{
	ReplaceDir:        "dir",
	ReplaceFile:       "file",
	ReplaceBase:       "base",
	ReplaceSuffix:     "suffix",
	ReplaceDefault:    "default",
	ReplaceRelativeTo: "relativeto",
	ReplaceIsAncestor: "isancestor",
}

// ParseReplacementOperator returns the replacement operator with the given
// name.
func ParseReplacementOperator(name string) (ReplacementOperator, bool) {
	for op := range replacementCount {
		if replacementName[op] == name {
			return op, true
		}
	}

	return 0, false
}

// ReplacementOperators returns every replacement operator in code order.
func ReplacementOperators() iter.Seq[ReplacementOperator] {
	return func(yield func(ReplacementOperator) bool) {
		for op := range replacementCount {
			if !yield(op) {
				return
			}
		}
	}
}

func (op ReplacementOperator) String() string {
	if op < replacementCount {
		return replacementName[op]
	}

	return "ReplacementOperator(" + strconv.Itoa(int(op)) + ")"
}

// appliesToEmpty reports whether the operator produces output for a subject
// that evaluated to nothing at all.
func (op ReplacementOperator) appliesToEmpty() bool { return op == ReplaceDefault }

// Apply returns the operator applied to s with operand repl.
//
// The relativeto and isancestor operators need two absolute paths; given
// anything else they return s and NO respectively.
func (op ReplacementOperator) Apply(s, repl string) string {
	switch op {
	case ReplaceDir:
		return joinPath(repl, basename(s))

	case ReplaceFile:
		return joinPath(dirname(s), repl)

	case ReplaceBase:
		return joinPath(dirname(s), repl) + "." + fileExtension(s)

	case ReplaceSuffix:
		suffix := repl
		if strings.Contains(repl, ".") {
			suffix = fileExtension(repl)
		}

		return withoutSuffix(s) + "." + suffix

	case ReplaceDefault:
		if s == "" {
			return repl
		}

		return s

	case ReplaceRelativeTo:
		if !isAbsPath(s) || !isAbsPath(repl) {
			return s
		}

		return relativePath(s, repl)

	case ReplaceIsAncestor:
		if !isAbsPath(s) || !isAbsPath(repl) {
			return "NO"
		}

		return FormatBool(isAncestorPath(repl, s))

	default:
		return s
	}
}

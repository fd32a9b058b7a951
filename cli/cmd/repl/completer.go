package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/thenexthub/Codira-sub015/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"bind", "clear", "dump", "edit", "help", "list", "macros", "quit", "reload", "stats", "unbind",
}

// operatorNames are the retrieval and replacement operator names, sorted
// and without duplicates.
var operatorNames = func() []string {
	var names []string

	for op := range lang.RetrievalOperators() {
		names = append(names, op.String())
	}

	for op := range lang.ReplacementOperators() {
		names = append(names, op.String())
	}

	slices.Sort(names)

	return slices.Compact(names)
}()

// isWordBoundary reports whether r delimits a completion word. Macro names
// and operator names never contain these characters.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'$', '(', ')', '{', '}', '[', ']',
		':', '=', ',', '"', '\'', '\\',
		'!', '&', '|', '?':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. Returns an empty word when the cursor sits on a
// boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// completionContext classifies the word starting at wordStart.
type completionContext int

const (
	contextLiteral  completionContext = iota // plain text, no completion
	contextMacro                             // a macro name after "$(", "${" or "$["
	contextOperator                          // an operator name after ':' in a reference
)

// wordContext returns what the word starting at wordStart names, by looking
// at the unclosed macro reference, if any, that contains it.
func wordContext(input string, wordStart int) completionContext {
	prefix := input[:wordStart]

	open := strings.LastIndexAny(prefix, "({[")
	if open < 1 || prefix[open-1] != '$' {
		return contextLiteral
	}

	if strings.ContainsAny(prefix[open:], ")}]") {
		return contextLiteral
	}

	if wordStart == open+1 {
		return contextMacro
	}

	if prefix[len(prefix)-1] == ':' {
		return contextOperator
	}

	return contextLiteral
}

// macroCandidates returns the names of every macro visible in ns, plus
// "inherited".
func macroCandidates(ns *lang.Namespace) []string {
	names := []string{"inherited"}

	if ns == nil {
		return names
	}

	for m := range ns.Macros() {
		names = append(names, m.Name())
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries. Right after an opening "$(" or ':' every
// candidate matches so the user can browse them.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	if m.mode == modeCtrl {
		if word == "" || strings.ContainsAny(input[:wordStart], " \t") {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		switch wordContext(input, wordStart) {
		case contextMacro:
			candidates = macroCandidates(m.namespace())
		case contextOperator:
			candidates = operatorNames
		default:
			return nil, nil, wordStart, wordEnd
		}
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing) uses
// the selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

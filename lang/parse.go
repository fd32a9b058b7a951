package lang

// ParserDelegate receives the structure a Parser finds, in source order.
//
// Every byte of the input is reported through exactly one callback sequence,
// however many diagnostics fire. Start and end callbacks are always balanced
// and properly nested. The asString flag passed to StartSubstitution and
// EndSubstitution is the same for a balanced pair; it is set when the
// substitution must always evaluate to a single string, for example inside
// quotes of a list.
type ParserDelegate interface {
	Literal(text string)
	StringFormOnlyLiteral(text string)
	ListSeparator(text string)
	StartSubstitution(asString bool)
	EndSubstitution(asString bool)
	StartMacroName()
	EndMacroName(bracketed bool)
	RetrievalOperator(name string)
	StartReplacementOperator(name string)
	EndReplacementOperator(name string)
	Diagnostic(d Diagnostic)
}

// Parser is a single-pass scanner over macro expression source text.
//
// The parser only finds structure and reports it to its delegate; it never
// fails. Malformed input is reported as diagnostics and scanning resumes at
// the next plausible boundary.
type Parser struct {
	delegate ParserDelegate
	input    string
	pos      int
}

// NewParser returns a parser over s reporting to d.
func NewParser(s string, d ParserDelegate) *Parser {
	return &Parser{delegate: d, input: s}
}

// Source returns the text being parsed.
func (p *Parser) Source() string { return p.input }

// Pos returns the byte offset of the scanner.
func (p *Parser) Pos() int { return p.pos }

// ParseAsString scans the input with string semantics: only '$' is
// significant.
func (p *Parser) ParseAsString() {
	if p.eof() {
		p.delegate.Literal("")

		return
	}

	for !p.eof() {
		if p.peek() == '$' {
			p.parseSubstitution(true)
		} else if lit, ok := p.scanUntil(isByte('$')); ok {
			p.delegate.Literal(lit)
		}
	}
}

// ParseAsStringList scans the input with list semantics: unquoted whitespace
// separates elements, quotes group and backslash escapes.
func (p *Parser) ParseAsStringList() {
	p.parseWhitespace(false)

	if p.eof() {
		return
	}

	p.parseQuotedElement()

	for !p.eof() {
		p.parseWhitespace(true)

		if p.eof() {
			break
		}

		p.parseQuotedElement()
	}
}

// parseWhitespace consumes a run of whitespace. A run that ends the input is
// never a separator.
func (p *Parser) parseWhitespace(separator bool) {
	if !p.atWhitespace() {
		return
	}

	mark := p.pos
	for p.atWhitespace() {
		p.advance()
	}

	if separator && !p.eof() {
		p.delegate.ListSeparator(p.input[mark:p.pos])
	} else {
		p.delegate.StringFormOnlyLiteral(p.input[mark:p.pos])
	}
}

// parseSubstitution parses one substitution starting at '$', including any
// delimiters and operators.
func (p *Parser) parseSubstitution(asString bool) {
	orig := p.pos

	p.delegate.StartSubstitution(asString)
	p.advance()

	switch {
	case p.eof():
		p.diagnose(TrailingDollarSign, LevelError, orig, p.pos)
		p.delegate.Literal(p.input[orig:p.pos])

	case closingDelimiter(p.peek()) != 0:
		closer := closingDelimiter(p.peek())

		if p.peek() != '(' {
			p.diagnose(DeprecatedMacroRefSyntax, LevelWarning, orig, p.pos+1)
		}

		p.advance()

		nameStart := p.pos

		p.delegate.StartMacroName()
		p.parseFragment(true, closer)

		if p.eof() {
			p.diagnose(UnterminatedMacroSubexpression, LevelError, orig, p.pos)
		} else if p.pos == nameStart {
			p.diagnose(MissingMacroName, LevelError, p.pos, p.pos)
		}

		p.delegate.EndMacroName(true)

		for !p.eof() && p.peek() == ':' {
			p.advance()
			p.parseOperator(asString, closer)
		}

		if !p.eof() && p.peek() == closer {
			p.advance()
		}

	case isNameStart(p.peek()):
		nameStart := p.pos

		p.delegate.StartMacroName()
		p.advance()

		for !p.eof() && isNameChar(p.peek()) {
			p.advance()
		}

		p.delegate.Literal(p.input[nameStart:p.pos])

		// Accept "$NAME$(X)" as a name built from a nested reference.
		if !p.eof() && p.peek() == '$' && p.pos+1 < len(p.input) &&
			p.input[p.pos+1] == '(' {
			p.parseSubstitution(true)
		}

		p.delegate.EndMacroName(false)

	default:
		fragment := p.input[orig:p.pos]

		// "$$" is an escaped '$'.
		if p.peek() == '$' {
			p.advance()
		}

		p.delegate.Literal(fragment)
	}

	p.delegate.EndSubstitution(asString)
}

// parseOperator parses one ":op" or ":op=operand" clause. The scanner is
// positioned just after the ':'.
func (p *Parser) parseOperator(asString bool, closer byte) {
	name, named := p.scanUntil(func(c byte) bool { return !isOperatorChar(c) })

	switch {
	case p.eof():
		p.diagnose(UnterminatedMacroSubexpression, LevelError, p.pos, p.pos)

	case p.peek() == ':' || p.peek() == closer:
		if named {
			p.delegate.RetrievalOperator(name)
		} else {
			p.diagnose(MissingOperatorName, LevelError, p.pos, p.pos)
		}

	case p.peek() == '=':
		p.advance()

		if !named {
			p.diagnose(MissingOperatorName, LevelError, p.pos, p.pos)
			p.scanUntil(isByte(':', closer))

			return
		}

		p.delegate.StartReplacementOperator(name)
		p.parseFragment(asString, closer)
		p.delegate.EndReplacementOperator(name)

		if p.eof() {
			p.diagnose(UnterminatedMacroSubexpression, LevelError, p.pos, p.pos)
		}

	default:
		p.diagnose(InvalidOperatorCharacter, LevelError, p.pos, p.pos+1)
		p.scanUntil(isByte(':', closer))
	}
}

// parseFragment parses literal text and nested substitutions up to the end
// of input, a ':' or closer.
func (p *Parser) parseFragment(asString bool, closer byte) {
	for !p.eof() {
		if lit, ok := p.scanUntil(isByte('$', ':', closer)); ok {
			p.delegate.Literal(lit)
		}

		if p.eof() || p.peek() != '$' {
			break
		}

		p.parseSubstitution(asString)
	}
}

type quoteState uint8

const (
	noQuotes quoteState = iota
	doubleQuotes
	singleQuotes
)

// parseQuotedElement parses one list element, stopping at unquoted
// whitespace or the end of input.
func (p *Parser) parseQuotedElement() {
	quotes := noQuotes
	mark := p.pos

	flush := func() {
		if mark < p.pos {
			p.delegate.Literal(p.input[mark:p.pos])
			mark = p.pos
		}
	}

loop:
	for {
		c := p.peek()

		switch {
		case c == '\\':
			flush()

			// A trailing backslash is kept in both forms; mark stays on it
			// so it is also flushed as literal text.
			if p.pos+1 >= len(p.input) {
				p.diagnose(TrailingEscapeCharacter, LevelError, p.pos, p.pos+1)
				p.delegate.StringFormOnlyLiteral(p.input[p.pos:])
				p.advance()

				break
			}

			p.delegate.StringFormOnlyLiteral(p.input[p.pos : p.pos+1])
			p.advance()
			mark = p.pos
			p.advance()

		case c == '$':
			flush()
			p.parseSubstitution(quotes != noQuotes)
			mark = p.pos

		case c == '"' && quotes != singleQuotes,
			c == '\'' && quotes != doubleQuotes:
			flush()
			p.delegate.StringFormOnlyLiteral(p.input[p.pos : p.pos+1])
			p.advance()

			if quotes == noQuotes && !p.eof() && p.peek() == c {
				p.delegate.Literal("")
				p.delegate.StringFormOnlyLiteral(p.input[p.pos : p.pos+1])
				p.advance()
			} else if quotes != noQuotes {
				quotes = noQuotes
			} else if c == '"' {
				quotes = doubleQuotes
			} else {
				quotes = singleQuotes
			}

			mark = p.pos

		case quotes == noQuotes && p.atWhitespace():
			break loop

		default:
			p.advance()
		}

		if p.eof() {
			break
		}
	}

	if mark < p.pos {
		p.delegate.Literal(p.input[mark:p.pos])
	}

	if quotes != noQuotes {
		p.diagnose(UnterminatedQuotation, LevelError, p.pos, p.pos)
	}
}

func (p *Parser) diagnose(kind DiagnosticKind, level DiagnosticLevel, start, end int) {
	p.delegate.Diagnostic(Diagnostic{
		Source: p.input,
		Start:  start,
		End:    end,
		Kind:   kind,
		Level:  level,
	})
}

func (p *Parser) eof() bool { return p.pos >= len(p.input) }

func (p *Parser) peek() byte {
	if p.eof() {
		return 0
	}

	return p.input[p.pos]
}

func (p *Parser) advance() {
	if !p.eof() {
		p.pos++
	}
}

func (p *Parser) atWhitespace() bool {
	return !p.eof() && isWhitespace(p.input[p.pos])
}

// scanUntil advances until stop reports true or the input ends. It returns
// the scanned text and whether any byte was scanned.
func (p *Parser) scanUntil(stop func(byte) bool) (string, bool) {
	start := p.pos
	for !p.eof() && !stop(p.input[p.pos]) {
		p.pos++
	}

	return p.input[start:p.pos], p.pos > start
}

func isByte(set ...byte) func(byte) bool {
	return func(c byte) bool {
		for _, s := range set {
			if c == s {
				return true
			}
		}

		return false
	}
}

func closingDelimiter(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '{':
		return '}'
	case '[':
		return ']'
	default:
		return 0
	}
}

func isWhitespace(c byte) bool { return c == ' ' || (c >= '\t' && c <= '\r') }

func isAlpha(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool { return isAlpha(c) || c == '_' }

func isNameChar(c byte) bool { return isAlpha(c) || isDigit(c) || c == '.' || c == '_' }

func isOperatorChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '-' || c == '+' || c == '.' || c == '_'
}

package lang

import (
	"strings"
)

// compiler is the ParserDelegate that turns parser events into an
// evaluation program.
type compiler struct {
	parser      *Parser
	handler     DiagnosticHandler
	instrs      []Instruction
	asStringLvl int
	nameLvl     int
	// discard counts open operands of unknown replacement operators, whose
	// instructions are dropped.
	discard int
}

func (c *compiler) emit(in Instruction) {
	if c.discard == 0 {
		c.instrs = append(c.instrs, in)
	}
}

// Literal emits an append even for empty text, since appending makes a
// pending list separator concrete.
func (c *compiler) Literal(text string) {
	c.emit(Instruction{Op: OpAppendLiteral, Text: text})
}

func (c *compiler) StringFormOnlyLiteral(text string) {
	c.emit(Instruction{Op: OpAppendStringFormOnly, Text: text})
}

func (c *compiler) ListSeparator(text string) {
	c.emit(Instruction{Op: OpSetNeedsSeparator, Text: text})
}

func (c *compiler) StartSubstitution(asString bool) {
	c.emit(Instruction{Op: OpBeginSubresult})

	if asString {
		c.asStringLvl++
	}
}

func (c *compiler) EndSubstitution(asString bool) {
	if asString {
		c.asStringLvl--
	}

	c.emit(Instruction{Op: OpMergeSubresult})
}

func (c *compiler) StartMacroName() {
	c.emit(Instruction{Op: OpBeginSubresult})
	c.nameLvl++
}

// EndMacroName evaluates names as strings regardless of quoting.
func (c *compiler) EndMacroName(bracketed bool) {
	c.nameLvl--
	c.emit(Instruction{
		Op:               OpEvalNamedMacro,
		AsString:         c.asStringLvl > 0 || c.nameLvl > 0,
		PreserveOriginal: !bracketed,
	})
}

func (c *compiler) RetrievalOperator(name string) {
	op, ok := ParseRetrievalOperator(name)
	if !ok {
		c.diagnoseAtParser(UnknownRetrievalOperator)

		return
	}

	c.emit(Instruction{Op: OpRetrieval, Retrieval: op})
}

func (c *compiler) StartReplacementOperator(name string) {
	if _, ok := ParseReplacementOperator(name); !ok {
		c.discard++

		return
	}

	c.emit(Instruction{Op: OpBeginSubresult})
}

// EndReplacementOperator leaves the subject unchanged for an unknown
// operator.
func (c *compiler) EndReplacementOperator(name string) {
	op, ok := ParseReplacementOperator(name)
	if !ok {
		c.discard--
		c.diagnoseAtParser(UnknownReplacementOperator)

		return
	}

	c.emit(Instruction{Op: OpReplacement, Replacement: op})
}

func (c *compiler) Diagnostic(d Diagnostic) {
	if c.handler != nil {
		c.handler(d)
	}
}

func (c *compiler) diagnoseAtParser(kind DiagnosticKind) {
	pos := c.parser.Pos()
	c.Diagnostic(Diagnostic{
		Source: c.parser.Source(),
		Start:  pos,
		End:    pos,
		Kind:   kind,
		Level:  LevelError,
	})
}

func compile(s string, list bool, handler DiagnosticHandler) *Expression {
	c := &compiler{handler: handler}
	c.parser = NewParser(s, c)

	if list {
		c.parser.ParseAsStringList()
	} else {
		c.parser.ParseAsString()
	}

	return &Expression{source: s, program: NewProgram(c.instrs), list: list}
}

func firstHandler(handlers []DiagnosticHandler) DiagnosticHandler {
	for _, h := range handlers {
		if h != nil {
			return h
		}
	}

	return nil
}

// ParseString parses s as a scalar expression. Text without '$' is a
// literal and skips the parser.
func ParseString(s string, handler ...DiagnosticHandler) *Expression {
	stats.parsedStrings.Add(1)

	if !strings.Contains(s, "$") {
		return ParseLiteralString(s)
	}

	return compile(s, false, firstHandler(handler))
}

// ParseStringList parses s as a list expression.
func ParseStringList(s string, handler ...DiagnosticHandler) *Expression {
	stats.parsedLists.Add(1)

	return compile(s, true, firstHandler(handler))
}

// ParseStringListItems parses items as a list expression. Each item is one
// element whose text may contain macro references.
func ParseStringListItems(items []string, handler ...DiagnosticHandler) *Expression {
	return ParseStringList(QuoteList(items), handler...)
}

// ParseLiteralString returns a scalar expression that evaluates to s
// verbatim. While interning is enabled, equal strings share one expression.
func ParseLiteralString(s string) *Expression {
	return internLiteral(s, func() *Expression {
		return &Expression{
			source:  s,
			program: NewProgram([]Instruction{{Op: OpAppendLiteral, Text: s}}),
		}
	})
}

// ParseLiteralStringList returns a list expression that evaluates to items
// verbatim.
func ParseLiteralStringList(items []string) *Expression {
	instrs := make([]Instruction, 0, 2*len(items))

	for i, item := range items {
		if i > 0 {
			instrs = append(instrs, Instruction{Op: OpSetNeedsSeparator, Text: " "})
		}

		instrs = append(instrs, Instruction{Op: OpAppendLiteral, Text: item})
	}

	return &Expression{
		source:  QuoteList(items),
		program: NewProgram(instrs),
		list:    true,
	}
}

// ParseForMacro parses value with the arity of m's kind. The value must be a
// string or a []string; a []string given to a scalar macro is parsed from
// its quoted list form. It returns nil for any other value type.
func (ns *Namespace) ParseForMacro(
	m *Macro,
	value any,
	handler ...DiagnosticHandler,
) *Expression {
	switch v := value.(type) {
	case string:
		if m.kind.IsList() {
			return ParseStringList(v, handler...)
		}

		return ParseString(v, handler...)

	case []string:
		if m.kind.IsList() {
			return ParseStringListItems(v, handler...)
		}

		return ParseString(QuoteList(v), handler...)

	default:
		return nil
	}
}

package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode identifies an evaluation instruction.
type Opcode uint8

// Evaluation opcodes. The numeric values appear in the binary encoding,
// where OpEvalNamedMacro is split into two codes by PreserveOriginal.
const (
	OpAppendLiteral Opcode = iota
	OpAppendStringFormOnly
	OpSetNeedsSeparator
	OpBeginSubresult
	OpEvalNamedMacro
	OpMergeSubresult
	OpRetrieval
	OpReplacement
)

var opcodeName = [...]string{
	OpAppendLiteral:        "append",
	OpAppendStringFormOnly: "append-string-form",
	OpSetNeedsSeparator:    "separator",
	OpBeginSubresult:       "begin",
	OpEvalNamedMacro:       "eval",
	OpMergeSubresult:       "merge",
	OpRetrieval:            "retrieve",
	OpReplacement:          "replace",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeName) {
		return opcodeName[op]
	}

	return "Opcode(" + strconv.Itoa(int(op)) + ")"
}

// Instruction is one step of an evaluation program. Only the fields relevant
// to Op are meaningful.
type Instruction struct {
	Text             string
	Op               Opcode
	AsString         bool
	PreserveOriginal bool
	Retrieval        RetrievalOperator
	Replacement      ReplacementOperator
}

func (in Instruction) String() string {
	switch in.Op {
	case OpAppendLiteral, OpAppendStringFormOnly, OpSetNeedsSeparator:
		return in.Op.String() + " " + strconv.Quote(in.Text)
	case OpEvalNamedMacro:
		return fmt.Sprintf("%s as_string=%t preserve=%t",
			in.Op, in.AsString, in.PreserveOriginal)
	case OpRetrieval:
		return in.Op.String() + " " + in.Retrieval.String()
	case OpReplacement:
		return in.Op.String() + " " + in.Replacement.String()
	default:
		return in.Op.String()
	}
}

type programVariant uint8

const (
	programEmpty programVariant = iota
	programLiteral
	programInstructions
)

// Program is the compiled form of an expression. The zero value is the
// empty program.
type Program struct {
	literal string
	instrs  []Instruction
	variant programVariant
}

// NewProgram returns a program running instrs. A program with no
// instructions is empty, and one consisting of a single literal append is
// stored as that literal.
func NewProgram(instrs []Instruction) Program {
	switch {
	case len(instrs) == 0:
		return Program{}
	case len(instrs) == 1 && instrs[0].Op == OpAppendLiteral:
		return Program{variant: programLiteral, literal: instrs[0].Text}
	default:
		return Program{variant: programInstructions, instrs: instrs}
	}
}

// IsLiteral reports whether the program evaluates to a constant.
func (p Program) IsLiteral() bool { return p.variant != programInstructions }

// LiteralString returns the constant the program evaluates to, if any.
func (p Program) LiteralString() (string, bool) {
	switch p.variant {
	case programEmpty:
		return "", true
	case programLiteral:
		return p.literal, true
	default:
		return "", false
	}
}

// Instructions returns the program's instructions. Literal programs report
// their single append instruction.
func (p Program) Instructions() []Instruction {
	switch p.variant {
	case programLiteral:
		return []Instruction{{Op: OpAppendLiteral, Text: p.literal}}
	default:
		return p.instrs
	}
}

// Equal reports whether both programs hold the same instructions.
func (p Program) Equal(other Program) bool {
	if p.variant != other.variant || p.literal != other.literal ||
		len(p.instrs) != len(other.instrs) {
		return false
	}

	for i := range p.instrs {
		if p.instrs[i] != other.instrs[i] {
			return false
		}
	}

	return true
}

// String returns a disassembly with one instruction per line.
func (p Program) String() string {
	var sb strings.Builder

	for i, in := range p.Instructions() {
		fmt.Fprintf(&sb, "%3d  %s\n", i, in)
	}

	return sb.String()
}

// Expression is a parsed macro expression. Its arity, scalar or list, is
// fixed by the parse entry point that produced it.
type Expression struct {
	source  string
	program Program
	list    bool
}

// Source returns the text the expression was parsed from.
func (e *Expression) Source() string { return e.source }

// IsList reports whether the expression evaluates to a string list.
func (e *Expression) IsList() bool { return e.list }

// Program returns the compiled program.
func (e *Expression) Program() Program { return e.program }

// IsLiteral reports whether the expression evaluates to a constant.
func (e *Expression) IsLiteral() bool { return e.program.IsLiteral() }

// LiteralString returns the constant the expression evaluates to, if any.
func (e *Expression) LiteralString() (string, bool) {
	return e.program.LiteralString()
}

// Equal reports whether both expressions have the same source, arity and
// program.
func (e *Expression) Equal(other *Expression) bool {
	if e == other {
		return true
	}

	if e == nil || other == nil {
		return false
	}

	return e.source == other.source && e.list == other.list &&
		e.program.Equal(other.program)
}

func (e *Expression) String() string { return e.source }

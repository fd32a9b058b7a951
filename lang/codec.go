package lang

import (
	"log/slog"

	"google.golang.org/protobuf/encoding/protowire"
)

// Binary encoding of expressions, tables and scopes.
//
// Every value is a sequence of varints and length-prefixed strings in the
// protobuf wire primitives, without field tags. Macros and parameters are
// encoded by name and relinked through a namespace on decode.

const (
	programCodeEmpty = iota
	programCodeLiteral
	programCodeInstructions
)

const (
	instrCodeLiteral = iota
	instrCodeStringFormOnly
	instrCodeSeparator
	instrCodeBegin
	instrCodeEval
	instrCodeEvalPreserve
	instrCodeMerge
	instrCodeRetrieval
	instrCodeReplacement
)

// DecodeDelegate supplies the namespace that decoded macros and parameters
// are declared in. Tables and scopes satisfy it.
type DecodeDelegate interface {
	Namespace() *Namespace
}

type namespaceDelegate struct{ ns *Namespace }

func (d namespaceDelegate) Namespace() *Namespace { return d.ns }

// Encoder appends encoded values to a buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the encoded data.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) putUint(v uint64) { e.buf = protowire.AppendVarint(e.buf, v) }

func (e *Encoder) putInt(v int) { e.putUint(uint64(v)) }

func (e *Encoder) putBool(v bool) { e.putUint(protowire.EncodeBool(v)) }

func (e *Encoder) putString(s string) { e.buf = protowire.AppendString(e.buf, s) }

func (e *Encoder) putStrings(s []string) {
	e.putInt(len(s))

	for _, str := range s {
		e.putString(str)
	}
}

// EncodeExpression appends expr.
func (e *Encoder) EncodeExpression(expr *Expression) {
	e.putString(expr.source)
	e.putBool(expr.list)
	e.encodeProgram(expr.program)
}

func (e *Encoder) encodeProgram(p Program) {
	switch p.variant {
	case programEmpty:
		e.putInt(programCodeEmpty)

	case programLiteral:
		e.putInt(programCodeLiteral)
		e.putString(p.literal)

	default:
		e.putInt(programCodeInstructions)
		e.putInt(len(p.instrs))

		for _, in := range p.instrs {
			e.encodeInstruction(in)
		}
	}
}

func (e *Encoder) encodeInstruction(in Instruction) {
	switch in.Op {
	case OpAppendLiteral:
		e.putInt(instrCodeLiteral)
		e.putString(in.Text)
	case OpAppendStringFormOnly:
		e.putInt(instrCodeStringFormOnly)
		e.putString(in.Text)
	case OpSetNeedsSeparator:
		e.putInt(instrCodeSeparator)
		e.putString(in.Text)
	case OpBeginSubresult:
		e.putInt(instrCodeBegin)
	case OpEvalNamedMacro:
		if in.PreserveOriginal {
			e.putInt(instrCodeEvalPreserve)
		} else {
			e.putInt(instrCodeEval)
		}

		e.putBool(in.AsString)
	case OpMergeSubresult:
		e.putInt(instrCodeMerge)
	case OpRetrieval:
		e.putInt(instrCodeRetrieval)
		e.putInt(int(in.Retrieval))
	case OpReplacement:
		e.putInt(instrCodeReplacement)
		e.putInt(int(in.Replacement))
	default:
		panic("lang: cannot encode opcode " + in.Op.String())
	}
}

func (e *Encoder) encodeConditions(cs ConditionSet) {
	e.putInt(len(cs))

	for _, c := range cs {
		e.putString(c.Parameter.name)
		e.putString(c.Pattern)
	}
}

func (e *Encoder) encodeChain(a *Assignment) {
	n := 0
	for range a.Chain() {
		n++
	}

	e.putInt(n)

	for v := range a.Chain() {
		e.EncodeExpression(v.Expression)
		e.encodeConditions(v.Conditions)
	}
}

// EncodeTable appends t with its macros sorted by name.
func (e *Encoder) EncodeTable(t *Table) {
	e.putInt(t.Len())

	for m := range t.Macros() {
		e.putString(m.name)
		e.putInt(int(m.kind))

		if m.kind == KindEnum {
			e.putStrings(m.enumValues)
		}

		e.encodeChain(t.assignments[m])
	}
}

// EncodeScope appends the scope's table and its parameter values sorted by
// parameter name.
func (e *Encoder) EncodeScope(s *Scope) {
	e.EncodeTable(s.table)

	byName := make(map[string][]string, len(s.values))
	for p, v := range s.values {
		byName[p.name] = v
	}

	e.putInt(len(byName))

	for _, name := range sortedKeys(byName) {
		e.putString(name)
		e.putStrings(byName[name])
	}
}

// Decoder reads values written by an Encoder.
type Decoder struct {
	delegate DecodeDelegate
	buf      []byte
	off      int
}

// NewDecoder returns a decoder over data. The delegate may be nil when only
// expressions are decoded.
func NewDecoder(data []byte, delegate DecodeDelegate) *Decoder {
	return &Decoder{buf: data, delegate: delegate}
}

// Remaining returns the number of bytes not yet consumed.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

func (d *Decoder) fail(what string) error {
	return ErrDecode.With(slog.String("reading", what), slog.Int("offset", d.off))
}

func (d *Decoder) readUint(what string) (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf[d.off:])
	if n < 0 {
		return 0, ErrDecode.Wrap(protowire.ParseError(n)).
			With(slog.String("reading", what), slog.Int("offset", d.off))
	}

	d.off += n

	return v, nil
}

// readCount reads a length and checks it against the bytes left, since every
// element takes at least one byte.
func (d *Decoder) readCount(what string) (int, error) {
	v, err := d.readUint(what)
	if err != nil {
		return 0, err
	}

	if v > uint64(d.Remaining()) {
		return 0, d.fail(what)
	}

	return int(v), nil
}

func (d *Decoder) readBool(what string) (bool, error) {
	v, err := d.readUint(what)

	return protowire.DecodeBool(v), err
}

func (d *Decoder) readString(what string) (string, error) {
	v, n := protowire.ConsumeString(d.buf[d.off:])
	if n < 0 {
		return "", ErrDecode.Wrap(protowire.ParseError(n)).
			With(slog.String("reading", what), slog.Int("offset", d.off))
	}

	d.off += n

	return v, nil
}

func (d *Decoder) readStrings(what string) ([]string, error) {
	n, err := d.readCount(what)
	if err != nil {
		return nil, err
	}

	out := make([]string, n)
	for i := range out {
		if out[i], err = d.readString(what); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (d *Decoder) namespace() (*Namespace, error) {
	if d.delegate == nil || d.delegate.Namespace() == nil {
		return nil, ErrDecode.With(slog.String("issue", "no namespace delegate"))
	}

	return d.delegate.Namespace(), nil
}

// DecodeExpression reads an expression.
func (d *Decoder) DecodeExpression() (*Expression, error) {
	source, err := d.readString("expression source")
	if err != nil {
		return nil, err
	}

	list, err := d.readBool("expression arity")
	if err != nil {
		return nil, err
	}

	p, err := d.decodeProgram()
	if err != nil {
		return nil, err
	}

	return &Expression{source: source, program: p, list: list}, nil
}

func (d *Decoder) decodeProgram() (Program, error) {
	code, err := d.readUint("program code")
	if err != nil {
		return Program{}, err
	}

	switch code {
	case programCodeEmpty:
		return Program{}, nil

	case programCodeLiteral:
		lit, err := d.readString("program literal")
		if err != nil {
			return Program{}, err
		}

		return Program{variant: programLiteral, literal: lit}, nil

	case programCodeInstructions:
		n, err := d.readCount("instruction count")
		if err != nil {
			return Program{}, err
		}

		instrs := make([]Instruction, n)
		for i := range instrs {
			if instrs[i], err = d.decodeInstruction(); err != nil {
				return Program{}, err
			}
		}

		if !balanced(instrs) {
			return Program{}, d.fail("unbalanced program")
		}

		return NewProgram(instrs), nil

	default:
		return Program{}, d.fail("program code")
	}
}

func (d *Decoder) decodeInstruction() (Instruction, error) {
	code, err := d.readUint("instruction code")
	if err != nil {
		return Instruction{}, err
	}

	var in Instruction

	switch code {
	case instrCodeLiteral, instrCodeStringFormOnly, instrCodeSeparator:
		in.Op = [...]Opcode{OpAppendLiteral, OpAppendStringFormOnly, OpSetNeedsSeparator}[code]
		in.Text, err = d.readString("instruction text")

	case instrCodeBegin:
		in.Op = OpBeginSubresult

	case instrCodeEval, instrCodeEvalPreserve:
		in.Op = OpEvalNamedMacro
		in.PreserveOriginal = code == instrCodeEvalPreserve
		in.AsString, err = d.readBool("eval mode")

	case instrCodeMerge:
		in.Op = OpMergeSubresult

	case instrCodeRetrieval:
		var v uint64

		in.Op = OpRetrieval
		if v, err = d.readUint("retrieval operator"); err == nil && v >= uint64(retrievalCount) {
			err = d.fail("retrieval operator")
		}

		in.Retrieval = RetrievalOperator(v)

	case instrCodeReplacement:
		var v uint64

		in.Op = OpReplacement
		if v, err = d.readUint("replacement operator"); err == nil && v >= uint64(replacementCount) {
			err = d.fail("replacement operator")
		}

		in.Replacement = ReplacementOperator(v)

	default:
		err = d.fail("instruction code")
	}

	return in, err
}

// balanced reports whether instrs never pop an empty subresult stack and
// leave it empty.
func balanced(instrs []Instruction) bool {
	depth := 0

	for _, in := range instrs {
		switch in.Op {
		case OpBeginSubresult:
			depth++
		case OpEvalNamedMacro, OpMergeSubresult:
			if depth < 1 {
				return false
			}

			depth--
		case OpRetrieval:
			if depth < 1 {
				return false
			}
		case OpReplacement:
			if depth < 2 {
				return false
			}

			depth--
		}
	}

	return depth == 0
}

func (d *Decoder) decodeConditions(ns *Namespace) (ConditionSet, error) {
	n, err := d.readCount("condition count")
	if err != nil {
		return nil, err
	}

	conds := make(ConditionSet, 0, n)

	for range n {
		name, err := d.readString("condition parameter")
		if err != nil {
			return nil, err
		}

		pattern, err := d.readString("condition pattern")
		if err != nil {
			return nil, err
		}

		conds = append(conds, Condition{Parameter: ns.DeclareParameter(name), Pattern: pattern})
	}

	return NewConditionSet(conds...), nil
}

func (d *Decoder) decodeChain(ns *Namespace, m *Macro) (*Assignment, error) {
	n, err := d.readCount("assignment count")
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, d.fail("empty assignment chain")
	}

	nodes := make([]*Assignment, n)

	for i := range nodes {
		expr, err := d.DecodeExpression()
		if err != nil {
			return nil, err
		}

		if expr.list != m.kind.IsList() {
			return nil, ErrKindMismatch.With(
				slog.String("name", m.name),
				slog.String("kind", m.kind.String()),
			)
		}

		conds, err := d.decodeConditions(ns)
		if err != nil {
			return nil, err
		}

		nodes[i] = &Assignment{Expression: expr, Conditions: conds}
	}

	for i := range n - 1 {
		nodes[i].next = nodes[i+1]
	}

	return nodes[0], nil
}

func (d *Decoder) decodeMacro(ns *Namespace) (*Macro, error) {
	name, err := d.readString("macro name")
	if err != nil {
		return nil, err
	}

	code, err := d.readUint("macro kind")
	if err != nil {
		return nil, err
	}

	if code >= uint64(kindCount) {
		return nil, d.fail("macro kind")
	}

	kind := Kind(code)

	var enumValues []string
	if kind == KindEnum {
		if enumValues, err = d.readStrings("enum values"); err != nil {
			return nil, err
		}
	}

	if m := ns.Lookup(name); m != nil {
		if m.kind != kind {
			return nil, ErrKindMismatch.With(
				slog.String("name", name),
				slog.String("kind", kind.String()),
				slog.String("declared_kind", m.kind.String()),
			)
		}

		return m, nil
	}

	return ns.declare(kind, name, enumValues)
}

// DecodeTable reads a table, declaring its macros in the delegate's
// namespace. A macro already declared with another kind is an
// ErrKindMismatch.
func (d *Decoder) DecodeTable() (*Table, error) {
	ns, err := d.namespace()
	if err != nil {
		return nil, err
	}

	n, err := d.readCount("table size")
	if err != nil {
		return nil, err
	}

	t := NewTable(ns)

	for range n {
		m, err := d.decodeMacro(ns)
		if err != nil {
			return nil, err
		}

		if t.assignments[m], err = d.decodeChain(ns, m); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// DecodeScope reads a scope, declaring its parameters in the delegate's
// namespace.
func (d *Decoder) DecodeScope() (*Scope, error) {
	t, err := d.DecodeTable()
	if err != nil {
		return nil, err
	}

	n, err := d.readCount("parameter count")
	if err != nil {
		return nil, err
	}

	values := make(map[*Parameter][]string, n)

	for range n {
		name, err := d.readString("parameter name")
		if err != nil {
			return nil, err
		}

		if values[t.namespace.DeclareParameter(name)], err = d.readStrings("parameter values"); err != nil {
			return nil, err
		}
	}

	return newScope(t, values), nil
}

func (d *Decoder) done() error {
	if d.Remaining() != 0 {
		return d.fail("trailing data")
	}

	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Expression) MarshalBinary() ([]byte, error) {
	enc := NewEncoder()
	enc.EncodeExpression(e)

	return enc.Bytes(), nil
}

// UnmarshalExpression decodes an expression written by MarshalBinary.
func UnmarshalExpression(data []byte) (*Expression, error) {
	d := NewDecoder(data, nil)

	expr, err := d.DecodeExpression()
	if err != nil {
		return nil, err
	}

	return expr, d.done()
}

// MarshalTable encodes t.
func MarshalTable(t *Table) []byte {
	enc := NewEncoder()
	enc.EncodeTable(t)

	return enc.Bytes()
}

// UnmarshalTable decodes a table, declaring its macros in ns.
func UnmarshalTable(data []byte, ns *Namespace) (*Table, error) {
	d := NewDecoder(data, namespaceDelegate{ns})

	t, err := d.DecodeTable()
	if err != nil {
		return nil, err
	}

	return t, d.done()
}

// MarshalScope encodes s.
func MarshalScope(s *Scope) []byte {
	enc := NewEncoder()
	enc.EncodeScope(s)

	return enc.Bytes()
}

// UnmarshalScope decodes a scope, declaring its macros and parameters in ns.
func UnmarshalScope(data []byte, ns *Namespace) (*Scope, error) {
	d := NewDecoder(data, namespaceDelegate{ns})

	s, err := d.DecodeScope()
	if err != nil {
		return nil, err
	}

	return s, d.done()
}

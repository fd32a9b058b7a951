package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionExpression is a compiled boolean condition over macro values,
// such as `$(SDK) contains iphone && !$(SKIP)`.
//
// Operands are bare words, double-quoted strings or macro expressions, and
// evaluate as strings. The operators are == (or is), != (or isnot),
// contains, !, && (or and), || (or or) and the conditional cond ? a : b,
// grouped with parentheses. A string used as a boolean is true when it
// starts with y, Y, t, T or a digit from 1 to 9.
type ConditionExpression struct {
	source   string
	operands []*Expression
	program  *vm.Program
}

// Source returns the text the condition was compiled from.
func (c *ConditionExpression) Source() string { return c.source }

func (c *ConditionExpression) String() string { return c.source }

type condTokenKind uint8

const (
	condOperand condTokenKind = iota
	condEqual
	condNotEqual
	condContains
	condNot
	condAnd
	condOr
	condQuestion
	condColon
	condLParen
	condRParen
)

type condToken struct {
	text string
	kind condTokenKind
}

var condWords = map[string]condTokenKind{
	"is":       condEqual,
	"isnot":    condNotEqual,
	"contains": condContains,
	"and":      condAnd,
	"or":       condOr,
}

func condSyntaxError(source, issue string, pos int) error {
	return ErrConditionSyntax.With(
		slog.String("source", source),
		slog.String("issue", issue),
		slog.Int("pos", pos),
	)
}

func isCondDelimiter(c byte) bool {
	return isWhitespace(c) || strings.IndexByte(`()?:!=<>&|"`, c) >= 0
}

// tokenizeCondition splits source into operator and operand tokens.
// Macro references inside an operand may contain any character.
func tokenizeCondition(source string) ([]condToken, error) {
	var toks []condToken

	for i := 0; i < len(source); {
		c := source[i]

		if isWhitespace(c) {
			i++

			continue
		}

		two := ""
		if i+1 < len(source) {
			two = source[i : i+2]
		}

		switch {
		case two == "==":
			toks = append(toks, condToken{kind: condEqual})
			i += 2

		case two == "!=":
			toks = append(toks, condToken{kind: condNotEqual})
			i += 2

		case two == "&&":
			toks = append(toks, condToken{kind: condAnd})
			i += 2

		case two == "||":
			toks = append(toks, condToken{kind: condOr})
			i += 2

		case c == '<' || c == '>':
			return nil, condSyntaxError(source, "relational operators are not supported", i)

		case c == '=' || c == '&' || c == '|':
			return nil, condSyntaxError(source, "unexpected "+strconv.QuoteRune(rune(c)), i)

		case c == '!':
			toks = append(toks, condToken{kind: condNot})
			i++

		case c == '?':
			toks = append(toks, condToken{kind: condQuestion})
			i++

		case c == ':':
			toks = append(toks, condToken{kind: condColon})
			i++

		case c == '(':
			toks = append(toks, condToken{kind: condLParen})
			i++

		case c == ')':
			toks = append(toks, condToken{kind: condRParen})
			i++

		case c == '"':
			text, n, err := scanQuotedOperand(source, i)
			if err != nil {
				return nil, err
			}

			toks = append(toks, condToken{kind: condOperand, text: text})
			i += n

		default:
			text, n, err := scanWordOperand(source, i)
			if err != nil {
				return nil, err
			}

			if kind, ok := condWords[text]; ok {
				toks = append(toks, condToken{kind: kind})
			} else {
				toks = append(toks, condToken{kind: condOperand, text: text})
			}

			i += n
		}
	}

	return toks, nil
}

// scanQuotedOperand returns the unescaped text of the quoted string at
// source[start] and the number of bytes it spans.
func scanQuotedOperand(source string, start int) (string, int, error) {
	var sb strings.Builder

	for i := start + 1; i < len(source); i++ {
		switch c := source[i]; c {
		case '\\':
			if i+1 < len(source) {
				i++
				sb.WriteByte(source[i])
			}
		case '"':
			return sb.String(), i + 1 - start, nil
		default:
			sb.WriteByte(c)
		}
	}

	return "", 0, condSyntaxError(source, "unterminated string", start)
}

// scanWordOperand returns the bare word at source[start], including any
// balanced $(...) or ${...} references, and its length.
func scanWordOperand(source string, start int) (string, int, error) {
	var closers []byte

	i := start

	for i < len(source) {
		c := source[i]

		switch {
		case c == '$' && i+1 < len(source) && (source[i+1] == '(' || source[i+1] == '{'):
			closers = append(closers, closingDelimiter(source[i+1]))
			i += 2

			continue

		case len(closers) > 0:
			switch c {
			case '(', '{':
				closers = append(closers, closingDelimiter(c))
			case closers[len(closers)-1]:
				closers = closers[:len(closers)-1]
			}

		case isCondDelimiter(c):
			return source[start:i], i - start, nil
		}

		i++
	}

	if len(closers) > 0 {
		return "", 0, condSyntaxError(source, "unbalanced macro reference", start)
	}

	return source[start:i], i - start, nil
}

// condTerm is a compiled subexpression in expr-lang syntax.
type condTerm struct {
	src    string
	isBool bool
}

func (t condTerm) asBool() string {
	if t.isBool {
		return t.src
	}

	return "truthy(" + t.src + ")"
}

func (t condTerm) asString() string {
	if t.isBool {
		return "yesno(" + t.src + ")"
	}

	return t.src
}

// condParser translates condition tokens to an expr-lang program whose
// operands are the elements of ops.
type condParser struct {
	source   string
	toks     []condToken
	pos      int
	operands []*Expression
}

func (p *condParser) peek() (condTokenKind, bool) {
	if p.pos >= len(p.toks) {
		return 0, false
	}

	return p.toks[p.pos].kind, true
}

func (p *condParser) accept(kind condTokenKind) bool {
	if k, ok := p.peek(); ok && k == kind {
		p.pos++

		return true
	}

	return false
}

func (p *condParser) fail(issue string) error {
	return ErrConditionSyntax.With(
		slog.String("source", p.source),
		slog.String("issue", issue),
		slog.Int("token", p.pos),
	)
}

func (p *condParser) parseConditional() (condTerm, error) {
	cond, err := p.parseOr()
	if err != nil || !p.accept(condQuestion) {
		return cond, err
	}

	then, err := p.parseConditional()
	if err != nil {
		return condTerm{}, err
	}

	if !p.accept(condColon) {
		return condTerm{}, p.fail("expected ':'")
	}

	otherwise, err := p.parseConditional()
	if err != nil {
		return condTerm{}, err
	}

	if then.isBool && otherwise.isBool {
		return condTerm{src: "(" + cond.asBool() + " ? " + then.src + " : " + otherwise.src + ")", isBool: true}, nil
	}

	return condTerm{
		src: "(" + cond.asBool() + " ? " + then.asString() + " : " + otherwise.asString() + ")",
	}, nil
}

func (p *condParser) parseOr() (condTerm, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return lhs, err
	}

	for p.accept(condOr) {
		rhs, err := p.parseAnd()
		if err != nil {
			return condTerm{}, err
		}

		lhs = condTerm{src: "(" + lhs.asBool() + " || " + rhs.asBool() + ")", isBool: true}
	}

	return lhs, nil
}

func (p *condParser) parseAnd() (condTerm, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return lhs, err
	}

	for p.accept(condAnd) {
		rhs, err := p.parseUnary()
		if err != nil {
			return condTerm{}, err
		}

		lhs = condTerm{src: "(" + lhs.asBool() + " && " + rhs.asBool() + ")", isBool: true}
	}

	return lhs, nil
}

func (p *condParser) parseUnary() (condTerm, error) {
	if p.accept(condNot) {
		t, err := p.parseUnary()
		if err != nil {
			return t, err
		}

		return condTerm{src: "!" + t.asBool(), isBool: true}, nil
	}

	return p.parseComparison()
}

func (p *condParser) parseComparison() (condTerm, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return lhs, err
	}

	op := ""

	switch {
	case p.accept(condEqual):
		op = " == "
	case p.accept(condNotEqual):
		op = " != "
	case p.accept(condContains):
		op = " contains "
	default:
		return lhs, nil
	}

	rhs, err := p.parsePrimary()
	if err != nil {
		return condTerm{}, err
	}

	return condTerm{src: "(" + lhs.asString() + op + rhs.asString() + ")", isBool: true}, nil
}

func (p *condParser) parsePrimary() (condTerm, error) {
	kind, ok := p.peek()

	switch {
	case !ok:
		return condTerm{}, p.fail("unexpected end of condition")

	case kind == condLParen:
		p.pos++

		t, err := p.parseConditional()
		if err != nil {
			return t, err
		}

		if !p.accept(condRParen) {
			return condTerm{}, p.fail("expected ')'")
		}

		return t, nil

	case kind == condOperand:
		text := p.toks[p.pos].text
		p.pos++

		var diag *Diagnostic

		operand := ParseString(text, func(d Diagnostic) {
			if diag == nil && d.Level == LevelError {
				diag = &d
			}
		})

		if diag != nil {
			return condTerm{}, p.fail(diag.Message())
		}

		p.operands = append(p.operands, operand)

		return condTerm{src: "ops[" + strconv.Itoa(len(p.operands)-1) + "]"}, nil

	default:
		return condTerm{}, p.fail("expected operand")
	}
}

func conditionEnv(ops []string) map[string]any {
	return map[string]any{
		"ops":    ops,
		"truthy": ParseBool,
		"yesno":  FormatBool,
	}
}

// CompileCondition compiles a condition expression. The empty condition
// evaluates to the empty string. Syntax errors, including the unsupported
// relational operators, are ErrConditionSyntax.
func CompileCondition(source string) (*ConditionExpression, error) {
	toks, err := tokenizeCondition(source)
	if err != nil {
		return nil, err
	}

	p := &condParser{source: source, toks: toks}
	skeleton := `""`

	if len(toks) > 0 {
		t, err := p.parseConditional()
		if err != nil {
			return nil, err
		}

		if p.pos != len(toks) {
			return nil, p.fail("unexpected token")
		}

		skeleton = t.src
	}

	program, err := expr.Compile(skeleton, expr.Env(conditionEnv(make([]string, len(p.operands)))))
	if err != nil {
		return nil, ErrConditionSyntax.Wrap(err).
			With(slog.String("source", source))
	}

	return &ConditionExpression{source: source, operands: p.operands, program: program}, nil
}

func (c *ConditionExpression) run(scope *Scope) (any, error) {
	ops := make([]string, len(c.operands))
	for i, operand := range c.operands {
		ops[i] = scope.EvaluateExpression(operand, nil)
	}

	result, err := vm.Run(c.program, conditionEnv(ops))
	if err != nil {
		return nil, ErrConditionEvaluate.Wrap(err).
			With(slog.String("source", c.source))
	}

	return result, nil
}

// EvaluateString evaluates the condition in scope. A boolean result is
// returned as YES or NO.
func (c *ConditionExpression) EvaluateString(scope *Scope) (string, error) {
	result, err := c.run(scope)
	if err != nil {
		return "", err
	}

	switch v := result.(type) {
	case bool:
		return FormatBool(v), nil
	case string:
		return v, nil
	default:
		return "", ErrConditionEvaluate.With(
			slog.String("source", c.source),
			slog.String("result_type", resultTypeName(result)),
		)
	}
}

// EvaluateBool evaluates the condition in scope as a boolean.
func (c *ConditionExpression) EvaluateBool(scope *Scope) (bool, error) {
	result, err := c.run(scope)
	if err != nil {
		return false, err
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case string:
		return ParseBool(v), nil
	default:
		return false, ErrConditionEvaluate.With(
			slog.String("source", c.source),
			slog.String("result_type", resultTypeName(result)),
		)
	}
}

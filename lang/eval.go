package lang

// Lookup overrides the table's value for a macro during one evaluation. It
// returns nil to defer to the table.
type Lookup func(m *Macro) *Expression

// evalContext is the activation record of one macro evaluation. Contexts
// chain through parent so "$(inherited)" can find the value being evaluated
// for the same macro further up.
type evalContext struct {
	scope  *Scope
	macro  *Macro
	value  *Assignment
	parent *evalContext
	lookup Lookup
}

// nextValue returns the value "$(inherited)" or a nested reference to m
// resolves to from this context.
func (ctx *evalContext) nextValue(m *Macro) *Assignment {
	cur := ctx

	for {
		if m == cur.macro {
			if cur.value == nil {
				return nil
			}

			return cur.value.next.FirstMatchingCondition(cur.scope.values)
		}

		if cur.parent == nil {
			return cur.scope.table.lookupWithOverride(m, cur.lookup).
				FirstMatchingCondition(cur.scope.values)
		}

		cur = cur.parent
	}
}

// resolve returns the macro a name refers to in this context.
func (ctx *evalContext) resolve(name string) *Macro {
	switch name {
	case "":
		return nil

	case "inherited", "value":
		if ctx.macro != nil {
			return ctx.macro
		}

		if name == "value" {
			m, _ := ctx.scope.Namespace().LookupOrDeclare(KindString, "value")

			return m
		}

		return nil

	default:
		return ctx.scope.table.namespace.Lookup(name)
	}
}

// run executes the expression's program, appending to out. With asString
// set, list separators and string-form-only text render as plain text.
func (e *Expression) run(ctx *evalContext, out *resultBuilder, asString bool) {
	p := e.program

	switch p.variant {
	case programEmpty:
		return
	case programLiteral:
		out.append(p.literal)

		return
	}

	var stack []*resultBuilder

	top := func() *resultBuilder {
		if len(stack) == 0 {
			return out
		}

		return stack[len(stack)-1]
	}

	pop := func() *resultBuilder {
		if len(stack) == 0 {
			panic("lang: evaluation subresult stack underflow")
		}

		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		return b
	}

	for _, in := range p.instrs {
		switch in.Op {
		case OpAppendLiteral:
			top().append(in.Text)

		case OpAppendStringFormOnly:
			if asString {
				top().append(in.Text)
			}

		case OpSetNeedsSeparator:
			if asString {
				top().append(in.Text)
			} else {
				top().setNeedsSeparator()
			}

		case OpBeginSubresult:
			stack = append(stack, &resultBuilder{})

		case OpEvalNamedMacro:
			name := pop().String()
			dst := top()

			m := ctx.resolve(name)
			if m == nil {
				if in.PreserveOriginal {
					dst.append("$" + name)
				}

				continue
			}

			if v := ctx.nextValue(m); v != nil {
				sub := &evalContext{scope: ctx.scope, macro: m, value: v, parent: ctx}
				v.Expression.run(sub, dst, in.AsString || asString)
			} else if in.PreserveOriginal {
				dst.append("$" + name)
			} else if m.kind == KindBoolean || m.kind == KindString {
				dst.append("")
			}

		case OpMergeSubresult:
			b := pop()
			top().appendContents(b)

		case OpRetrieval:
			src := pop()
			dst := &resultBuilder{}

			src.elements(func(elem string) {
				dst.append(in.Retrieval.Apply(elem))
				dst.setNeedsSeparator()
			})

			stack = append(stack, dst)

		case OpReplacement:
			operand := pop().String()
			src := pop()
			dst := &resultBuilder{}

			if src.hasText {
				src.elements(func(elem string) {
					dst.append(in.Replacement.Apply(elem, operand))
					dst.setNeedsSeparator()
				})
			} else if in.Replacement.appliesToEmpty() {
				dst.append(in.Replacement.Apply("", operand))
			}

			stack = append(stack, dst)

		default:
			panic("lang: unknown opcode " + in.Op.String())
		}
	}

	if len(stack) != 0 {
		panic("lang: unbalanced evaluation subresult stack")
	}
}

// Package lang implements the build setting macro language: macro
// declarations, the expression parser and its compiled evaluation
// programs, conditional value assignment tables and evaluation scopes.
//
// # Expressions
//
// A value is text with embedded macro references:
//
//	$(NAME)            value of NAME
//	${NAME}            same, with braces
//	$NAME              same, for a bare name
//	$(NAME:upper)      retrieval operator applied to each element
//	$(NAME:suffix=.o)  replacement operator with an operand
//	$(inherited)       the next lower-precedence value of the macro
//	$($(PREFIX)_NAME)  nested reference
//
// Retrieval operators are quote, upper, lower, identifier,
// rfc1034identifier, c99extidentifier, dir, file, base, suffix,
// standardizepath and not. Replacement operators are dir, file, base,
// suffix, default, relativeto and isancestor.
//
// Values of list macros split at unquoted whitespace. Single or double
// quotes and backslashes group text into one element:
//
//	-DA "-DB C" -DD\ E    three elements: -DA, -DB C and -DD E
//
// Parsing never fails. Problems are reported as [Diagnostic] values to an
// optional [DiagnosticHandler] and the expression is compiled as far as
// possible.
//
// # Tables and scopes
//
// A [Table] maps each [Macro] of a [Namespace] to a chain of assignments,
// highest precedence first. An assignment may be qualified with conditions
// such as [sdk=iphoneos*]. A [Scope] evaluates macros of a table for a
// fixed set of condition parameter values and caches the results:
//
//	ns := lang.NewNamespace(nil, "project")
//	cflags, _ := ns.DeclareStringList("OTHER_CFLAGS")
//	sdk := ns.DeclareParameter("sdk")
//
//	t := lang.NewTable(ns)
//	t.Push(cflags, lang.ParseStringList("-DBASE"))
//	t.Push(cflags, lang.ParseStringList("$(inherited) -DSIM"),
//		lang.Condition{Parameter: sdk, Pattern: "iphonesimulator*"})
//
//	s := lang.NewScope(t, map[*lang.Parameter][]string{sdk: {"iphonesimulator17.0"}})
//	s.EvaluateList(cflags, nil) // [-DBASE -DSIM]
//
// Evaluation never fails either: a macro without a matching assignment is
// empty, and unknown macro names expand to nothing.
//
// # Settings documents
//
// [ReadSettings] decodes YAML or JSON documents mapping keys of the form
// NAME[param=pattern] to values, and [Namespace.ParseTable] turns such maps
// into tables.
//
// # Serialization
//
// Expressions, tables and scopes have a compact binary encoding built on
// the protobuf wire primitives; see [MarshalTable] and [MarshalScope].
package lang

package lang

import (
	"fmt"
	"log/slog"
)

// DiagnosticKind identifies a problem found while parsing an expression.
type DiagnosticKind uint8

// Diagnostic kinds.
const (
	TrailingDollarSign DiagnosticKind = iota
	DeprecatedMacroRefSyntax
	UnterminatedMacroSubexpression
	MissingMacroName
	MissingOperatorName
	InvalidOperatorCharacter
	TrailingEscapeCharacter
	UnterminatedQuotation
	UnknownRetrievalOperator
	UnknownReplacementOperator
)

var diagnosticMessage = [...]string{
	TrailingDollarSign:             "trailing '$' character",
	DeprecatedMacroRefSyntax:       "deprecated macro reference syntax; use '$(NAME)'",
	UnterminatedMacroSubexpression: "unterminated macro subexpression",
	MissingMacroName:               "missing macro name",
	MissingOperatorName:            "missing operator name",
	InvalidOperatorCharacter:       "invalid character in operator name",
	TrailingEscapeCharacter:        "trailing escape character",
	UnterminatedQuotation:          "unterminated quotation",
	UnknownRetrievalOperator:       "unknown retrieval operator",
	UnknownReplacementOperator:     "unknown replacement operator",
}

var diagnosticName = [...]string{
	TrailingDollarSign:             "trailingDollarSign",
	DeprecatedMacroRefSyntax:       "deprecatedMacroRefSyntax",
	UnterminatedMacroSubexpression: "unterminatedMacroSubexpression",
	MissingMacroName:               "missingMacroName",
	MissingOperatorName:            "missingOperatorName",
	InvalidOperatorCharacter:       "invalidOperatorCharacter",
	TrailingEscapeCharacter:        "trailingEscapeCharacter",
	UnterminatedQuotation:          "unterminatedQuotation",
	UnknownRetrievalOperator:       "unknownRetrievalOperator",
	UnknownReplacementOperator:     "unknownReplacementOperator",
}

func (k DiagnosticKind) String() string {
	if int(k) < len(diagnosticName) {
		return diagnosticName[k]
	}

	return fmt.Sprintf("DiagnosticKind(%d)", k)
}

// DiagnosticLevel is the severity of a diagnostic.
type DiagnosticLevel uint8

// Diagnostic levels.
const (
	LevelWarning DiagnosticLevel = iota
	LevelError
)

func (l DiagnosticLevel) String() string {
	if l == LevelWarning {
		return "warning"
	}

	return "error"
}

// Diagnostic describes a problem in an expression source. Start and End are
// byte offsets into Source.
type Diagnostic struct {
	Source string
	Start  int
	End    int
	Kind   DiagnosticKind
	Level  DiagnosticLevel
}

// DiagnosticHandler receives diagnostics as they are found. Parsing never
// stops because of a diagnostic.
type DiagnosticHandler func(Diagnostic)

// Message returns a human-readable description of the diagnostic.
func (d Diagnostic) Message() string {
	return diagnosticMessage[d.Kind]
}

// Text returns the source text the diagnostic covers.
func (d Diagnostic) Text() string {
	return d.Source[d.Start:d.End]
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Start, d.End, d.Level, d.Message())
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", d.Kind.String()),
		slog.String("level", d.Level.String()),
		slog.Int("start", d.Start),
		slog.Int("end", d.End),
		slog.String("source", d.Source),
	)
}

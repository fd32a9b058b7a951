package lang

import (
	"errors"
	"log/slog"
	"slices"
)

// Sentinel errors. Derive errors from them with [Error.Wrap] and
// [Error.With]; the result still matches the sentinel with [errors.Is].
var (
	ErrConflictingDeclaration = NewError("conflicting macro declaration")
	ErrUnknownMacroType       = NewError("unknown macro declaration type")
	ErrInvalidName            = NewError("invalid macro name")
	ErrInconsistentDefinition = NewError("inconsistent macro definition")
	ErrUnknownKind            = NewError("unknown macro kind")
	ErrKindMismatch           = NewError("macro kind mismatch")
	ErrDecode                 = NewError("decode failed")
	ErrReadInput              = NewError("failed to read input")
	ErrSettingsFormat         = NewError("invalid settings document")
	ErrConditionSyntax        = NewError("invalid condition expression")
	ErrConditionEvaluate      = NewError("condition evaluation failed")
)

// Error is an error message with an optional cause and structured logging
// attributes. Logged with [slog.Any], it expands to a group holding the
// message, the cause and every attribute.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error returns "msg: cause", or whichever of the two is set.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
// Errors derived from the same sentinel by Wrap or With share its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg && t.err == nil
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns the structured attributes attached to the error.
func (e *Error) Attrs() []slog.Attr { return e.attrs }

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended. The receiver is unchanged.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: append(slices.Clip(e.attrs), attrs...)}
}

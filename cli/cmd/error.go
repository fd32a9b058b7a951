package cmd

import "github.com/thenexthub/Codira-sub015/lang"

// Error is a command error with structured logging attributes. Commands use
// the same representation as the macro engine, so a failure logs the same
// way whichever layer raised it.
type Error = lang.Error

// NewError returns an Error with the given message.
func NewError(msg string) *Error { return lang.NewError(msg) }

var (
	ErrReadSettings = NewError("read settings")
	ErrBinding      = NewError("invalid condition binding (want param=value[,value...])")
	ErrCondition    = NewError("evaluate condition")
	ErrOutput       = NewError("write output")
	ErrWriteConfig  = NewError("write configuration file")
	ErrFileExists   = NewError("file exists (use --force to overwrite)")
)

package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog.Store(&original) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"InfoContext", func(msg string, attrs ...slog.Attr) {
			InfoContext(context.Background(), msg, attrs...)
		}, "INFO"},
		{"With", func(msg string, attrs ...slog.Attr) {
			With(attrs...).Warn(msg)
		}, "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("package message", slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, "package message") {
				t.Errorf("expected message, got %s", output)
			}

			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %q, got %s", tt.level, output)
			}

			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected attribute, got %s", output)
			}
		})
	}

	if Default().Level() != LevelTrace {
		t.Errorf("expected configured level, got %v", Default().Level())
	}
}

func TestPackage_Caller(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog.Store(&original) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithCaller(true), WithPretty(false))
	Info("message")

	if out := buf.String(); !strings.Contains(out, "pkg_test.go") {
		t.Errorf("expected call site in output, got %q", out)
	}
}

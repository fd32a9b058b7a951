package log

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{" debug ", LevelDebug},
		{"info", LevelInfo},
		{"WARN", LevelWarn},
		{"error", LevelError},
		{"info+2", Level(2)},
		{"verbose", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestLevelsAndFormats(t *testing.T) {
	levels := slices.Collect(Levels())
	if !slices.Equal(levels, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("unexpected levels %q", levels)
	}

	formats := slices.Collect(Formats())
	if !slices.Equal(formats, []string{"text", "json"}) {
		t.Errorf("unexpected formats %q", formats)
	}

	if s := Level(3).String(); s != "Level(3)" {
		t.Errorf("expected %q, got %q", "Level(3)", s)
	}
}

func TestConfig_Options(t *testing.T) {
	c := config{}.with(
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(false),
		WithOutput(nil),
	)

	if c.level != LevelWarn {
		t.Errorf("expected level %v, got %v", LevelWarn, c.level)
	}

	if c.format != FormatJSON {
		t.Errorf("expected format %v, got %v", FormatJSON, c.format)
	}

	if !c.caller || c.pretty {
		t.Errorf("expected caller=true pretty=false, got %t %t", c.caller, c.pretty)
	}

	if c.output != io.Discard {
		t.Error("expected nil output to be replaced with io.Discard")
	}
}

func TestConfig_With_IsIndependent(t *testing.T) {
	base := config{}.with(WithDefaults(io.Discard), WithLevel(LevelDebug))
	derived := base.with(WithLevel(LevelError))

	if base.level != LevelDebug || derived.level != LevelError {
		t.Errorf("expected independent levels, got %v and %v", base.level, derived.level)
	}

	if derived.format != DefaultFormat || !derived.pretty {
		t.Errorf("expected derived config to keep defaults, got %+v", derived)
	}
}

func TestConfig_Handler(t *testing.T) {
	tests := []struct {
		format Format
		pretty bool
		want   string
	}{
		{FormatText, false, "*slog.TextHandler"},
		{FormatJSON, false, "*slog.JSONHandler"},
	}

	for _, tt := range tests {
		c := config{}.with(WithDefaults(io.Discard), WithFormat(tt.format), WithPretty(tt.pretty))

		if got := fmt.Sprintf("%T", c.handler()); got != tt.want {
			t.Errorf("%v/%t: expected %s, got %s", tt.format, tt.pretty, tt.want, got)
		}
	}

	for _, pretty := range []bool{false, true} {
		c := config{}.with(WithDefaults(io.Discard), WithFormat(Format(7)), WithPretty(pretty))

		if c.handler() != slog.DiscardHandler {
			t.Errorf("pretty=%t: expected discard handler for an unknown format", pretty)
		}
	}
}

func TestConfig_formatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339nano", "2023-10-15T14:30:45.123456789Z"},
		{"ms", "Oct 15 14:30:45.123"},
		{"date-time", "2023-10-15 14:30:45"},
		{"Kitchen", "2:30PM"},
		{"2006/01/02", "2023/10/15"},
		{"none", ""},
		{"", ""},
		{"   \t  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			c := config{}.with(WithTimeLayout(tt.layout))

			if got := c.formatTime(now); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func BenchmarkConfig_formatTime(b *testing.B) {
	c := config{}.with(WithTimeLayout("RFC3339Nano"))
	now := time.Now()

	for b.Loop() {
		_ = c.formatTime(now)
	}
}

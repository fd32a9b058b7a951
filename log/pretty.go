package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fatih/color"
)

// palette holds the colors used by the pretty handlers.
// Colors are suppressed automatically when the output is not a terminal
// (see [color.NoColor]).
var palette = struct {
	key, str, num, dur, time, null *color.Color
	yes, no                        *color.Color
	level                          map[Level]*color.Color
}{
	key:  color.New(color.FgHiBlack),
	str:  color.New(color.FgCyan),
	num:  color.New(color.FgYellow),
	dur:  color.New(color.FgMagenta),
	time: color.New(color.FgBlue),
	null: color.New(color.FgHiBlack),
	yes:  color.New(color.FgGreen),
	no:   color.New(color.FgRed),
	level: map[Level]*color.Color{
		LevelTrace: color.New(color.FgHiBlack),
		LevelDebug: color.New(color.FgBlue),
		LevelInfo:  color.New(color.FgGreen),
		LevelWarn:  color.New(color.FgYellow, color.Bold),
		LevelError: color.New(color.FgRed, color.Bold),
	},
}

// levelColor returns the color of the nearest defined level at or below l.
func levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return palette.level[LevelError]
	case l >= slog.LevelWarn:
		return palette.level[LevelWarn]
	case l >= slog.LevelInfo:
		return palette.level[LevelInfo]
	case l >= slog.LevelDebug:
		return palette.level[LevelDebug]
	default:
		return palette.level[LevelTrace]
	}
}

// prettyHandler is the state shared by both pretty handlers: options, the
// output writer, and any attributes or groups bound with WithAttrs and
// WithGroup.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []slog.Attr
}

func (h prettyHandler) enabled(level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

// bind returns a copy of h with attrs qualified by the current group prefix.
func (h prettyHandler) bind(attrs []slog.Attr) prettyHandler {
	bound := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	bound = append(bound, h.attrs...)

	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		bound = append(bound, a)
	}

	h.attrs = bound

	return h
}

func (h prettyHandler) group(name string) prettyHandler {
	if name != "" {
		h.prefix += name + "."
	}

	return h
}

// header returns the time, level and source of r in output order.
func (h prettyHandler) header(r slog.Record) []slog.Attr {
	header := make([]slog.Attr, 0, 3)

	if !r.Time.IsZero() {
		header = append(header, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	header = append(header, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			header = append(header,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	return header
}

// replace applies the configured ReplaceAttr function, if any.
func (h prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h prettyHandler) flush(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler writes colorized key=value records without quoting.
type prettyTextHandler struct{ prettyHandler }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, a := range h.header(r) {
		writeTextAttr(&buf, a)
	}

	writeTextAttr(&buf, slog.String(slog.MessageKey, r.Message))

	for _, a := range h.attrs {
		writeTextAttr(&buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		writeTextAttr(&buf, a)

		return true
	})

	return h.flush(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.bind(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.group(name)}
}

func writeTextAttr(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	palette.key.Fprint(buf, a.Key)
	buf.WriteByte('=')
	writeValue(buf, a.Value.Resolve())
}

// writeValue writes v colored by its kind.
func writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		palette.str.Fprint(buf, v.String())

	case slog.KindInt64:
		palette.num.Fprint(buf, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		palette.num.Fprint(buf, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		palette.num.Fprint(buf, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			palette.yes.Fprint(buf, "true")
		} else {
			palette.no.Fprint(buf, "false")
		}

	case slog.KindDuration:
		palette.dur.Fprint(buf, v.Duration().String())

	case slog.KindTime:
		palette.time.Fprint(buf, v.Time().Format(DefaultTimeLayout))

	case slog.KindGroup:
		for i, a := range v.Group() {
			if i > 0 {
				buf.WriteByte(',')
			}

			palette.key.Fprint(buf, a.Key)
			buf.WriteByte(':')
			writeValue(buf, a.Value.Resolve())
		}

	default:
		switch val := v.Any().(type) {
		case slog.Level:
			levelColor(val).Fprint(buf, Level(val).String())

		case nil:
			palette.null.Fprint(buf, "null")

		default:
			palette.str.Fprint(buf, v.String())
		}
	}
}

// prettyJSONHandler writes colorized records as an indented object with one
// field per line.
type prettyJSONHandler struct{ prettyHandler }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var fields []slog.Attr

	fields = append(fields, h.header(r)...)
	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		fields = append(fields, a)

		return true
	})

	var buf bytes.Buffer

	buf.WriteString("{\n")

	first := true

	for _, a := range fields {
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteString(",\n")
		}

		first = false

		buf.WriteString("  ")
		palette.key.Fprint(&buf, strconv.Quote(a.Key))
		buf.WriteString(": ")
		writeValue(&buf, a.Value.Resolve())
	}

	buf.WriteString("\n}")

	return h.flush(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.bind(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.group(name)}
}

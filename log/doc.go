// Package log provides a concurrency-safe structured logger based on
// [log/slog], used by the macro evaluator and its command-line interface.
//
// A zero-value [Logger] is valid and discards everything, so library code
// can accept a Logger without requiring callers to configure one.
//
// # Configuration
//
// Loggers are configured at creation time with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with some options overridden, and
// [Logger.With] derives one that adds attributes to every record.
//
// # Levels
//
// In addition to the four [slog] levels, [LevelTrace] sits below
// [LevelDebug] and is used for per-lookup detail such as cache hits.
//
// # Pretty Output
//
// With [WithPretty] enabled, records are colorized with
// [github.com/fatih/color]. Text records are written unquoted and JSON
// records are written one field per line. Colors are dropped when the
// output is not a terminal.
//
// # Package Logger
//
// Package-level functions such as [Info] and [ErrorContext] write to a
// default logger on standard error, which [Config] reconfigures.
// Context-unaware functions use [DefaultContextProvider].
package log

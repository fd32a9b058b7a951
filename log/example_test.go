package log_test

import (
	"log/slog"
	"os"

	"github.com/thenexthub/Codira-sub015/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("settings loaded", slog.String("file", "project.yaml"))
	logger.Debug("not shown at the default level")

	// Output:
	// level=INFO msg="settings loaded" file=project.yaml
}

func ExampleLogger_With() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout("none"),
		log.WithLevel(log.LevelTrace),
		log.WithPretty(false))

	logger = logger.With(slog.String("table", "target"))
	logger.Trace("lookup", slog.String("macro", "CFLAGS"))

	// Output:
	// {"level":"TRACE","msg":"lookup","table":"target","macro":"CFLAGS"}
}

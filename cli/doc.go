// Package cli contains the command line interface for macroeval.
//
// # Usage
//
// Settings documents are YAML mappings from macro name to value, optionally
// conditioned with [param=pattern] suffixes. They are layered in the order
// given, so later documents override earlier ones and can refer to them with
// $(inherited):
//
//	macroeval -s project.yaml -s target.yaml eval PRODUCT_NAME
//	macroeval -s project.yaml --cond sdk=iphoneos expand '$(SDKROOT:dir)'
//	macroeval -s project.yaml dump --bound CFLAGS
//	macroeval -s project.yaml repl
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory, which the init command writes from the current flag values.
// Nested mappings join their keys with a hyphen, so "log: {level: debug}"
// sets --log-level. A config.yaml.json file beside it is read as JSON.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ms, none)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o macroeval .
//
//   - -p, --pprof-profile: Profile settings ingestion and macro evaluation
//     (allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-out: Directory receiving one subdirectory of profiles per
//     command, e.g. <out>/eval
//
// The engine counters gathered while profiling are logged when the profile
// is written.
package cli

// Package profile provides optional runtime profiling built on
// [github.com/pkg/profile].
//
// Profiling must be enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof -o macroeval .
//
// Without the tag [Modes] is empty and [Config.Start] is a no-op. With it,
// the supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Profiles are written to [Config.Path] with names
// matching the mode (cpu.pprof, mem.pprof and so on):
//
//	stop := profile.Config{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer stop.Stop()
//
// Analyze the output with go tool pprof:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// Building with the tag also imports [net/http/pprof], registering its
// handlers at /debug/pprof/ on the default mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

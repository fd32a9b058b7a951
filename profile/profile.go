package profile

// Config selects a profiling mode and where its output goes.
type Config struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the current directory
	Quiet bool   // suppress the profiler's own log output
}

// Stopper stops a running profiler and flushes its output.
type Stopper interface{ Stop() }

// Start starts the profiler. It returns a no-op Stopper if the mode is
// empty or unsupported, or if built without the pprof tag. Both Start and
// Stop are always safely callable.
func (c Config) Start() Stopper {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}

//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command identifier. It appears in help text and
	// in the default configuration and cache paths.
	Name = "macroeval"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "Build setting macro evaluator"
)

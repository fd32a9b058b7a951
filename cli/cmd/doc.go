// Package cmd implements the macroeval subcommands.
//
// Every command that evaluates reads the settings documents named with
// --settings, layered in order into one table, and binds the condition
// parameters named with --cond. See [WithSources] and [WithBindings].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)

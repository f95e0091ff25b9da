// Package cmd implements the tdl subcommands: parse, render, validate,
// optimize, suggest, custom and init.
//
// Commands read a template from a file argument or stdin ("-") and write
// results to the kong context's Stdout. Variable, context and declaration
// files may be YAML or JSON.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file. Its top-level "config" mapping holds flag
	// defaults.
	ConfigIdentifier = "config"

	// DatabaseIdentifier is the kong variable identifier containing the
	// default path of the custom variable database.
	DatabaseIdentifier = "db"
)

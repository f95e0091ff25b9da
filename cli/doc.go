// Package cli contains the command line interface for tdl.
//
// # Usage
//
//	tdl parse greeting.tdl --format yaml
//	tdl render greeting.tdl --vars vars.yaml --declared declared.yaml
//	tdl validate greeting.tdl --declared declared.yaml
//	tdl optimize greeting.tdl --write
//	tdl suggest cust --user u-123
//	tdl custom add loyalty_tier --user u-123 --type text
//
// # Configuration
//
// Flag defaults are read from two files in the user configuration directory
// (for example ~/.config/tdl):
//
//   - config.yaml: the mapping under the top-level "config" key, read by
//     [loadConfig]. Keys are flag names; underscores may replace hyphens and
//     nested mappings join their keys with a hyphen.
//   - config.json: a flat JSON object read by kong's JSON loader.
//
// Example config.yaml:
//
//	config:
//	  log:
//	    level: debug
//	    pretty: false
//	  limit: 5
//
// Command-line flags override config file values. "tdl init" writes the
// current flag values to config.yaml.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//   - --pprof-mode: Enable profiling (cpu, heap, allocs, ...)
//   - --pprof-dir: Profile output directory
package cli

// Package cli contains the command line interface for cnd.
//
// # Usage
//
// Each subcommand reads compact node type definition source from named
// files or stdin ("-") and compiles it into fully-resolved records:
//
//	# Compile to JSON (the default command and format)
//	cnd compile types.cnd
//
//	# Compile to YAML, or summarize the definitions
//	cnd compile yaml types.cnd
//	cnd compile summary types.cnd
//
//	# Validate only, reporting the first error with source context
//	cnd check types.cnd
//
//	# Recompile whenever the source files change
//	cnd watch types.cnd
//
//	# Interactive session
//	cnd repl
//
// # Configuration
//
// Flag defaults are read from a config file in the user configuration
// directory, in JSON (config.json) or YAML (config.yaml) form. See
// [resolve] for the accepted YAML layout. Command-line flags override
// config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Examples
//
//	# Debug logging with CPU profiling
//	cnd --log-level=debug --pprof-mode=cpu compile types.cnd
//
//	# Text format logs while watching for changes
//	cnd --log-format=text watch types.cnd
package cli

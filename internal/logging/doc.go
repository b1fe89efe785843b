// Package logging builds the slog loggers used across Songscribe.
//
// It provides a console handler with flattened key=value attributes and a
// JSON handler for machine consumption, both behind the same Options struct.
// NewFromConfig wires the configured level and format and mirrors output to
// songscribe.log in the log directory. The attr helpers keep call sites
// terse and make the error attribute shape uniform.
package logging

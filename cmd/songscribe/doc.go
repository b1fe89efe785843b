// Package main hosts the songscribe CLI entrypoint and command graph.
//
// The Cobra-based command tree submits batches to the daemon API, lists and
// prints stored songs, reports daemon status, and scaffolds configuration.
// It centralizes configuration resolution and API client construction so
// subcommands can focus on user experience instead of wiring.
package main

// Package daemon coordinates the long-running Songscribe process.
//
// It wires configuration, the artifact store, and the worker dispatcher
// into a single lifecycle with flock-based locking to prevent multiple
// instances, and exposes the HTTP API the CLI and web client talk to.
// Admission logic lives in internal/api; the daemon focuses on startup,
// shutdown, and request plumbing.
package daemon

// Package dispatch launches the external download-and-transcribe worker
// for admitted video IDs.
//
// The worker runtime (a pinned node major version) is resolved once per
// batch through an ordered strategy list: explicit config pin, nvm
// installs, well-known paths, nvm shell wrapper, then a bare "node"
// fallback. Workers run fire-and-forget: the dispatcher records the PID
// and returns without waiting, and all worker output appends to one
// shared process.log so concurrent workers interleave chronologically.
//
// An in-process per-ID in-flight set prevents the same video being
// dispatched twice by overlapping batches from this daemon. Overlap from
// separate processes is still possible and is tolerated by the worker's
// --skip-existing flag.
package dispatch

// Package library probes and reads the two on-disk artifact tiers:
// raw-lyrics (tier A, downloader output) and transcribed-lyrics (tier B,
// enriched output). Admission decisions depend only on artifact presence,
// which this package always recomputes from the filesystem.
package library

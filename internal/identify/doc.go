// Package identify parses free-form YouTube references into canonical
// 11-character video IDs. Pure string matching, no network or filesystem
// access.
package identify

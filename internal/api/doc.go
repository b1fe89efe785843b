// Package api holds the admission pipeline service and the wire-format
// types the daemon and CLI exchange. DTOs use the snake_case field names
// the original web client consumes; internal models never cross the
// transport boundary directly.
package api

// Package config loads, normalizes, and validates Songscribe configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SONGSCRIBE_API_TOKEN. The Config type centralizes every knob the daemon
// and CLI need: the two artifact tiers, the shared worker log, the API bind
// address, and the worker runtime discovery settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

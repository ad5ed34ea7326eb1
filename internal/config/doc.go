// Package config loads, normalizes, and validates timelinekit configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides such as
// TIMELINEKIT_LOG_LEVEL. The Config type centralizes the knobs the CLI and
// the engine need: codec output options, the unknown-field policy, the
// sanitizer's replacement rate, the id namespace, and where the catalog
// database lives.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config

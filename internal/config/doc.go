// Package config loads, normalizes, and validates Winnow configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the engine and CLI need: source/cache directories, similarity threshold,
// fingerprint core size, worker counts, and removal behavior.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical removal modes, and clear validation errors that
// name the offending field and its accepted range.
package config

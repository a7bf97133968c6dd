// Package config loads, normalizes, and validates dubmix configuration data.
//
// It supplies engine defaults, expands user paths (including tilde
// shortcuts), reads TOML files, overlays an optional YAML preset, and honours
// environment fallbacks (optionally seeded from a .env file) such as
// DUBMIX_LOG_LEVEL. The Config type centralizes every knob the CLI and the
// render pipeline need so alignment, mixing, and synthesis settings are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config

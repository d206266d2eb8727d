// Package config loads, normalizes, and validates sluice configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the pipeline needs: corpus and artifact directories, split and vocabulary
// parameters, and the names of the external tools each stage shells out to.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

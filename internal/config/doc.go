// Package config loads, normalizes, and validates musicclean configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads adjacent .env files, and honours
// environment fallbacks such as HF_TOKEN and MUSICCLEAN_PROFANITY_LIST. The
// Config type centralizes every knob the CLI and pipeline need so work
// directories, external tool settings, and filter behaviour are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

// Package config loads, normalizes, and validates the TOML configuration file.
package config

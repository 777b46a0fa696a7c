// Package config loads, validates, and normalizes dubloom configuration.
//
// Configuration comes from a TOML file (default ~/.config/dubloom/config.toml
// or ./dubloom.toml), with studio credentials optionally overridden from the
// environment. Defaults live in defaults.go; path fields are expanded and
// made absolute during Load so downstream code never sees "~".
package config

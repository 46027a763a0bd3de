// Package config loads, normalizes, and validates taxfiler configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/taxfiler/config.toml or a
// project-local taxfiler.toml. The Config type centralizes every knob the CLI
// and folder watcher need so inbox, filing target, and state directories are
// discovered in one pass.
//
// The classification and filing packages never read configuration
// themselves; callers translate Config values into explicit options.
package config

// Package notifications pushes filing events to ntfy.
//
// The ntfy topic comes from the [notifications] section of config.toml. With
// no topic configured NewService returns a no-op, so callers never need to
// check whether push is enabled.
package notifications

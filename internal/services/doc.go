// Package services defines shared utilities consumed by the classification,
// filing, and batch packages.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, stage names, source paths, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so every failure carries a
//     marker that FailureKind can translate into a stable history label.
//
// Use these helpers when wiring new pipeline steps so error reporting and
// observability stay uniform across the CLI and the folder watcher.
package services

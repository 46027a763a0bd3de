// Package logging assembles structured slog loggers and formatting helpers used
// across taxfiler.
//
// It owns the console and JSON handlers, the stderr-plus-file fan-out used by
// the CLI, and context-aware helpers so pipeline code automatically tags log
// lines with batch IDs, stages, and source paths. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging

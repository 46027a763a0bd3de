// Package tracking remembers which inbox files have already been filed.
//
// Tracker is the lookup the organizer and scanner consult before touching a
// file; paths are compared as exact absolute strings. Memory keeps the set in
// process for tests and one-shot runs. Store persists it in SQLite together
// with a per-batch processing history, so the watcher and manual organize
// runs share one view across restarts. Session wraps either one for the
// watcher: a file leaving the inbox is released in process without erasing
// its durable record.
package tracking

// Package logs reads the JSON log file written by the taxfiler logger.
//
// Last returns the newest matching entries with bounded memory; Follow polls
// for appended lines and restarts from the top when the file is truncated or
// replaced. Entries can be filtered by level, batch, and event type so
// `taxfiler logs --batch` shows the story of one organize run.
package logs

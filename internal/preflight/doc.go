// Package preflight checks that the folders and programs taxfiler depends on
// are usable before a batch starts.
//
// The organize and watch commands call RunAll and refuse to start when a
// required check fails; "taxfiler doctor" prints every result. Text
// extraction checks are skipped when the feature is disabled.
package preflight

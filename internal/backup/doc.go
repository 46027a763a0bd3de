// Package backup manages the pre-move copies kept under the target folder's
// .backup directory.
//
// Each copy is named {timestamp}_{original basename}, where the timestamp is
// the UTC creation time with separators replaced by dashes
// (2025-07-20T13-01-02-123Z). Other tooling reads this layout, so the format
// is fixed. Copies are never rolled back after a failed move; Prune removes
// them once they age past the retention window.
package backup

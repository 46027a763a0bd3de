package backup

import (
	"context"
	"log/slog"
	"os"
	"time"

	"taxfiler/internal/logging"
)

// PruneResult contains the outcome of a backup prune.
type PruneResult struct {
	Removed []string
	Kept    int
	Errors  []PruneError
}

// PruneError pairs a backup path with its removal error.
type PruneError struct {
	Path  string
	Error error
}

// Prune removes backup copies older than retentionDays. Age comes from the
// timestamp in the file name, or the modification time for files that do not
// carry one. A retention of zero or less keeps everything.
func Prune(ctx context.Context, dir string, retentionDays int, now time.Time, logger *slog.Logger) PruneResult {
	result := PruneResult{}
	if retentionDays <= 0 {
		return result
	}

	entries, err := List(dir)
	if err != nil {
		result.Errors = append(result.Errors, PruneError{Path: dir, Error: err})
		return result
	}

	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.CreatedAt.Before(cutoff) {
			result.Kept++
			continue
		}
		if err := os.Remove(entry.Path); err != nil {
			result.Errors = append(result.Errors, PruneError{Path: entry.Path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove expired backup",
					logging.String("path", entry.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "backup_prune_failed"),
					logging.String(logging.FieldErrorHint, "check permissions on the target .backup folder"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, entry.Path)
		if logger != nil {
			logger.Info("removed expired backup",
				logging.String("path", entry.Path),
				logging.Duration("age", now.Sub(entry.CreatedAt)),
				logging.String(logging.FieldEventType, "backup_prune"),
			)
		}
	}
	return result
}

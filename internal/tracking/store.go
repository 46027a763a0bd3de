package tracking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taxfiler/internal/config"
)

// Store persists processed files and batch history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ Tracker = (*Store)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the tracking database under the
// configured state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the tracking database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasBeenProcessed reports whether path has a processed_files row.
func (s *Store) HasBeenProcessed(ctx context.Context, path string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM processed_files WHERE path = ?", path).Scan(&count); err != nil {
		return false, fmt.Errorf("query processed file: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records rec, replacing any earlier row for the same path.
func (s *Store) MarkProcessed(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Path) == "" {
		return errors.New("mark processed: path is required")
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now()
	}
	err := s.execWithRetry(ctx, `INSERT INTO processed_files
        (path, original_name, new_name, document_type, destination_path, processed_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(path) DO UPDATE SET
            original_name = excluded.original_name,
            new_name = excluded.new_name,
            document_type = excluded.document_type,
            destination_path = excluded.destination_path,
            processed_at = excluded.processed_at`,
		rec.Path,
		rec.OriginalName,
		nullableString(rec.NewName),
		nullableString(rec.DocumentType),
		nullableString(rec.DestinationPath),
		formatTime(rec.ProcessedAt),
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Forget removes path so a reappearing file is processed again.
func (s *Store) Forget(ctx context.Context, path string) error {
	if err := s.execWithRetry(ctx, "DELETE FROM processed_files WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget processed file: %w", err)
	}
	return nil
}

// GetProcessed returns the record for path, or nil when none exists.
func (s *Store) GetProcessed(ctx context.Context, path string) (*Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM processed_files WHERE path = ?", path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListProcessed returns the most recently filed documents first. A limit of
// zero or less returns every row.
func (s *Store) ListProcessed(ctx context.Context, limit int) ([]Record, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + recordColumns + " FROM processed_files ORDER BY processed_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processed files: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// HistoryEntry is one organize batch.
type HistoryEntry struct {
	ID         int64           `json:"id"`
	BatchID    string          `json:"batch_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Total      int             `json:"total"`
	Success    int             `json:"success"`
	Failure    int             `json:"failure"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// RecordHistory appends a batch summary and returns its row ID.
func (s *Store) RecordHistory(ctx context.Context, entry HistoryEntry) (int64, error) {
	ctx = ensureContext(ctx)
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = entry.StartedAt
	}
	var details any
	if len(entry.Details) > 0 {
		if !json.Valid(entry.Details) {
			return 0, errors.New("record history: details are not valid JSON")
		}
		details = string(entry.Details)
	}

	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `INSERT INTO processing_history
            (batch_id, started_at, finished_at, total_files, success_count, failure_count, details)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.BatchID,
			formatTime(entry.StartedAt),
			formatTime(entry.FinishedAt),
			entry.Total,
			entry.Success,
			entry.Failure,
			details,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}
	return id, nil
}

// History returns batch summaries newest first, at most limit rows when
// limit is positive.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, batch_id, started_at, finished_at, total_files, success_count, failure_count, details
        FROM processing_history ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			entry       HistoryEntry
			startedRaw  string
			finishedRaw string
			details     sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.BatchID, &startedRaw, &finishedRaw, &entry.Total, &entry.Success, &entry.Failure, &details); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if t, err := parseTimeString(startedRaw); err == nil {
			entry.StartedAt = t
		}
		if t, err := parseTimeString(finishedRaw); err == nil {
			entry.FinishedAt = t
		}
		if details.Valid && details.String != "" {
			entry.Details = json.RawMessage(details.String)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

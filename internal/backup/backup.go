package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"taxfiler/internal/fileutil"
	"taxfiler/internal/services"
)

// DirName is the backup folder created under the target directory.
const DirName = ".backup"

// stampLen is the length of a rendered timestamp (2025-07-20T13-01-02-123Z).
const stampLen = 24

var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

const maxCreateAttempts = 100

// Entry describes one backup copy on disk.
type Entry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
	Size         int64     `json:"size"`
}

// Stamp renders t as an ISO-8601 UTC timestamp with millisecond precision,
// ':' and '.' replaced by '-'.
func Stamp(t time.Time) string {
	return stampReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func parseStamp(s string) (time.Time, bool) {
	if len(s) != stampLen || s[19] != '-' || s[23] != 'Z' {
		return time.Time{}, false
	}
	iso := s[:13] + ":" + s[14:16] + ":" + s[17:19] + "." + s[20:23] + "Z"
	t, err := time.Parse("2006-01-02T15:04:05.000Z", iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Create copies src into dir as {Stamp(now)}_{basename}. The copy is verified
// and never replaces an existing file; a name already taken within the same
// millisecond gets a numeric suffix on the timestamp.
func Create(dir, src string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	stamp := Stamp(now)
	base := filepath.Base(src)
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name := stamp + "_" + base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d_%s", stamp, attempt, base)
		}
		target := filepath.Join(dir, name)
		err := fileutil.CopyFileExclusive(src, target)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fileutil.ErrDestinationExists) {
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted backup names for %s in %s", base, dir)
}

// Restore copies a backup over originalPath, replacing whatever is there.
func Restore(backupPath, originalPath string) error {
	info, err := os.Stat(backupPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "backup", "restore", "Backup file not found: "+backupPath, nil)
		}
		return services.Wrap(services.ErrFilesystem, "backup", "restore", "Unable to read backup", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "backup", "restore", "Backup path is a directory: "+backupPath, nil)
	}
	if strings.TrimSpace(originalPath) == "" {
		return services.Wrap(services.ErrValidation, "backup", "restore", "Restore destination is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(originalPath), 0o755); err != nil {
		return services.Wrap(services.ErrFilesystem, "backup", "restore", "Unable to create restore directory", err)
	}
	if err := fileutil.CopyFileVerified(backupPath, originalPath); err != nil {
		return services.Wrap(services.ErrFilesystem, "backup", "restore", "Failed to copy backup", err)
	}
	return nil
}

// List returns the backup copies in dir, newest first. A missing directory
// yields an empty list.
func List(dir string) ([]Entry, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Entry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		e := Entry{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		}
		if created, original, ok := parseName(entry.Name()); ok {
			e.CreatedAt = created
			e.OriginalName = original
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// parseName splits a backup file name into its timestamp and original name.
func parseName(name string) (time.Time, string, bool) {
	if len(name) < stampLen+2 {
		return time.Time{}, "", false
	}
	created, ok := parseStamp(name[:stampLen])
	if !ok {
		return time.Time{}, "", false
	}
	rest := name[stampLen:]
	// Optional "-N" disambiguator before the separator.
	if strings.HasPrefix(rest, "-") {
		idx := strings.IndexByte(rest, '_')
		if idx < 0 {
			return time.Time{}, "", false
		}
		rest = rest[idx:]
	}
	if !strings.HasPrefix(rest, "_") || len(rest) == 1 {
		return time.Time{}, "", false
	}
	return created, rest[1:], true
}

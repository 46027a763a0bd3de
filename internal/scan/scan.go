// Package scan lists the documents waiting in an inbox folder.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"taxfiler/internal/tracking"
)

// FileInfo describes one candidate document.
type FileInfo struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Extension  string    `json:"extension"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Filter decides which directory entries are candidates.
type Filter struct {
	// Extensions are lower-case and dot-prefixed. Empty accepts .pdf and .csv.
	Extensions   []string
	IgnoreHidden bool
}

// Accepts reports whether a bare file name passes the filter.
func (f Filter) Accepts(name string) bool {
	if name == "" {
		return false
	}
	if f.IgnoreHidden && strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	allowed := f.Extensions
	if len(allowed) == 0 {
		allowed = []string{".pdf", ".csv"}
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// Dir lists the candidate files directly inside dir, sorted by name.
// Subdirectories are not descended into. Paths the tracker already knows are
// skipped when tracker is non-nil.
func Dir(ctx context.Context, dir string, filter Filter, tracker tracking.Tracker) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve inbox: %w", err)
	}

	var out []FileInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !entry.Type().IsRegular() || !filter.Accepts(entry.Name()) {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		if tracker != nil {
			done, err := tracker.HasBeenProcessed(ctx, path)
			if err != nil {
				return out, fmt.Errorf("check processed %s: %w", entry.Name(), err)
			}
			if done {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, FileInfo{
			Path:       path,
			Name:       entry.Name(),
			Size:       info.Size(),
			Extension:  strings.ToLower(filepath.Ext(entry.Name())),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Paths extracts the file paths from infos.
func Paths(infos []FileInfo) []string {
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.Path)
	}
	return out
}

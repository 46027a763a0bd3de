package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"taxfiler/internal/config"
	"taxfiler/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDirectoryCreatable passes when path is an accessible directory, or
// when it is missing and its nearest existing ancestor is writable so the
// directory can be made on first use. Nothing is created.
func CheckDirectoryCreatable(name, path, firstUse string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); !errors.Is(err, os.ErrNotExist) {
			break
		}
		next := filepath.Dir(ancestor)
		if next == ancestor {
			break
		}
		ancestor = next
	}
	if res := CheckDirectoryAccess(name, ancestor); !res.Passed {
		return res
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, firstUse)}
}

// CheckBackupDir passes when the backup folder is writable or can be created
// on the first backup.
func CheckBackupDir(path string) Result {
	return CheckDirectoryCreatable("Backup directory", path, "created on first backup")
}

// CheckSystemDeps evaluates the external programs the config relies on.
// pdftotext is optional: without it documents are classified by name only.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	if cfg == nil || !cfg.TextExtraction.Enabled {
		return nil
	}
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "pdftotext",
			Command:     cfg.PdftotextBinary(),
			Description: "Reads PDF text to fill company name and fiscal period",
			Optional:    true,
		},
	})
}

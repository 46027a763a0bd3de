package filer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taxfiler/internal/backup"
	"taxfiler/internal/fileutil"
	"taxfiler/internal/logging"
	"taxfiler/internal/naming"
	"taxfiler/internal/services"
)

const (
	stageFiling = "filing"
	// maxCollisionAttempts bounds the _(N) search.
	maxCollisionAttempts = 10000
	// maxMoveRetries bounds the retries when a destination appears between
	// the check and the move.
	maxMoveRetries = 5
)

// Operation describes one intended move. It carries no outcome.
type Operation struct {
	SourcePath       string `json:"source_path"`
	CanonicalName    string `json:"canonical_name"`
	TargetDir        string `json:"target_dir"`
	CreateSubfolders bool   `json:"create_subfolders"`
	Backup           bool   `json:"backup"`
}

// Result is the outcome of one Operation. DestinationPath is empty unless
// Succeeded is true.
type Result struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path,omitempty"`
	BackupPath      string `json:"backup_path,omitempty"`
	CategoryFolder  string `json:"category_folder,omitempty"`
	Succeeded       bool   `json:"succeeded"`
	ErrorMessage    string `json:"error,omitempty"`
	// Err carries the wrapped error for errors.Is classification.
	Err error `json:"-"`
}

// Failed builds a failed result for sourcePath from err.
func Failed(sourcePath, message string, err error) Result {
	return Result{SourcePath: sourcePath, ErrorMessage: message, Err: err}
}

// Engine executes rename operations. The zero value is not usable; call
// NewEngine.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
	move   func(src, dst string) error
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMover replaces the no-replace move primitive. move must fail with
// fileutil.ErrDestinationExists when dst is taken.
func WithMover(move func(src, dst string) error) Option {
	return func(e *Engine) {
		if move != nil {
			e.move = move
		}
	}
}

// NewEngine builds an Engine that logs through logger.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewComponentLogger(logger, "filer"),
		now:    time.Now,
		move:   fileutil.MoveNoReplace,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rename performs op and reports the outcome. It never panics and never
// returns an error; failures are described by Result.ErrorMessage and
// Result.Err.
func (e *Engine) Rename(ctx context.Context, op Operation) Result {
	ctx = services.WithSourcePath(services.WithStage(ctx, stageFiling), op.SourcePath)
	logger := logging.WithContext(ctx, e.logger)

	res, err := e.rename(ctx, op)
	if err != nil {
		res.Succeeded = false
		res.DestinationPath = ""
		res.Err = err
		res.ErrorMessage = userMessage(err)
		logging.WarnWithContext(logger, "file not filed", "filing_failed",
			logging.String("canonical_name", op.CanonicalName),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.String("backup_path", res.BackupPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
			logging.String(logging.FieldImpact, "file left in place"),
		)
		return res
	}

	res.Succeeded = true
	logger.Info("file filed",
		logging.String("destination", res.DestinationPath),
		logging.String("category_folder", res.CategoryFolder),
		logging.String("backup_path", res.BackupPath),
		logging.String(logging.FieldEventType, "file_filed"),
	)
	return res
}

func (e *Engine) rename(ctx context.Context, op Operation) (Result, error) {
	res := Result{SourcePath: op.SourcePath}

	if err := ctx.Err(); err != nil {
		return res, services.Wrap(services.ErrCanceled, stageFiling, "start", "Filing canceled", err)
	}

	info, err := os.Stat(op.SourcePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, &messageError{
				msg: "Source file not found: " + op.SourcePath,
				err: services.Wrap(services.ErrNotFound, stageFiling, "stat source", "Source file not found", err),
			}
		}
		return res, services.Wrap(services.ErrFilesystem, stageFiling, "stat source", "Unable to read source file", err)
	}
	if !info.Mode().IsRegular() {
		return res, &messageError{
			msg: "Source is not a regular file: " + op.SourcePath,
			err: services.Wrap(services.ErrValidation, stageFiling, "stat source", "Source is not a regular file", nil),
		}
	}

	if err := naming.ValidateName(op.CanonicalName); err != nil {
		return res, &messageError{
			msg: "Invalid file name: " + op.CanonicalName,
			err: services.Wrap(services.ErrValidation, stageFiling, "validate name", "Invalid file name", err),
		}
	}

	targetDir, err := cleanTarget(op.TargetDir)
	if err != nil {
		return res, &messageError{
			msg: "Invalid target folder path",
			err: services.Wrap(services.ErrValidation, stageFiling, "validate target", "Invalid target folder path", err),
		}
	}

	destDir := targetDir
	if op.CreateSubfolders {
		res.CategoryFolder = naming.ResolveFolder(op.CanonicalName)
		destDir = filepath.Join(targetDir, res.CategoryFolder)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return res, services.Wrap(services.ErrFilesystem, stageFiling, "create folder", "Unable to create destination folder", err)
	}

	dest, err := nextFreePath(destDir, op.CanonicalName)
	if err != nil {
		return res, services.Wrap(services.ErrFilesystem, stageFiling, "resolve collision", "Unable to allocate destination name", err)
	}

	if op.Backup {
		backupPath, err := backup.Create(filepath.Join(targetDir, backup.DirName), op.SourcePath, e.now())
		if err != nil {
			return res, services.Wrap(services.ErrFilesystem, stageFiling, "backup", "Failed to create backup", err)
		}
		res.BackupPath = backupPath
	}

	for attempt := 0; ; attempt++ {
		err := e.move(op.SourcePath, dest)
		if err == nil {
			break
		}
		if !errors.Is(err, fileutil.ErrDestinationExists) || attempt >= maxMoveRetries {
			return res, services.Wrap(services.ErrFilesystem, stageFiling, "move", "Failed to move file", err)
		}
		if dest, err = nextFreePath(destDir, op.CanonicalName); err != nil {
			return res, services.Wrap(services.ErrFilesystem, stageFiling, "resolve collision", "Unable to allocate destination name", err)
		}
	}

	res.DestinationPath = dest
	return res, nil
}

// cleanTarget normalizes the target folder and rejects parent-directory
// segments that survive normalization.
func cleanTarget(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("target folder is empty")
	}
	cleaned := filepath.Clean(dir)
	for _, segment := range strings.Split(filepath.ToSlash(cleaned), "/") {
		if segment == ".." {
			return "", fmt.Errorf("target folder %q escapes its base", dir)
		}
	}
	return cleaned, nil
}

// nextFreePath returns dir/name, or dir/{base}_(N){ext} for the lowest N
// whose path is not taken.
func nextFreePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	taken, err := fileutil.Exists(candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxCollisionAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_(%d)%s", base, n, ext))
		taken, err := fileutil.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted collision suffixes for %s in %s", name, dir)
}

// messageError pairs a user-facing message with the classified error.
type messageError struct {
	msg string
	err error
}

func (m *messageError) Error() string { return m.err.Error() }

func (m *messageError) Unwrap() error { return m.err }

func userMessage(err error) string {
	var m *messageError
	if errors.As(err, &m) {
		return m.msg
	}
	return err.Error()
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "the file was moved or deleted before filing; rescan the inbox"
	case errors.Is(err, services.ErrValidation):
		return "check the target folder setting and the suggested name"
	case errors.Is(err, services.ErrCanceled):
		return "rerun organize to file the remaining documents"
	default:
		return "check permissions and free space on the target folder"
	}
}

// Package pdftext extracts the text layer of PDF documents with poppler's
// pdftotext so the classifier can read company names and dates that the
// file name does not carry.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"taxfiler/internal/services"
)

// DefaultTimeout bounds one pdftotext run when the caller does not set one.
const DefaultTimeout = 30 * time.Second

// Executor abstracts command execution for the extractor.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Extractor runs pdftotext against single files.
type Extractor struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New builds an Extractor for binary. A non-positive timeout uses
// DefaultTimeout.
func New(binary string, timeout time.Duration) *Extractor {
	return NewWithExecutor(binary, timeout, nil)
}

// NewWithExecutor allows injecting a custom executor for testing.
func NewWithExecutor(binary string, timeout time.Duration, executor Executor) *Extractor {
	if executor == nil {
		executor = commandExecutor{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "pdftotext"
	}
	return &Extractor{binary: binary, timeout: timeout, exec: executor}
}

// Binary returns the configured pdftotext command.
func (e *Extractor) Binary() string {
	return e.binary
}

// Supports reports whether path has an extension pdftotext can read.
func Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Extract returns the UTF-8 text of the PDF at path with layout preserved.
// Non-PDF files return an empty string and no error.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if !Supports(path) {
		return "", nil
	}
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.exec.Run(runCtx, e.binary, []string{"-layout", "-enc", "UTF-8", path, "-"})
	if err != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return "", services.Wrap(services.ErrTimeout, "text_extraction", "pdftotext", fmt.Sprintf("pdftotext exceeded %s", e.timeout), err)
		case errors.Is(ctx.Err(), context.Canceled):
			return "", services.Wrap(services.ErrCanceled, "text_extraction", "pdftotext", "Text extraction canceled", err)
		case errors.Is(err, exec.ErrNotFound):
			return "", services.Wrap(services.ErrExternalTool, "text_extraction", "pdftotext", fmt.Sprintf("binary %q not found", e.binary), err)
		default:
			return "", services.Wrap(services.ErrExternalTool, "text_extraction", "pdftotext", "pdftotext failed", err)
		}
	}
	return string(out), nil
}

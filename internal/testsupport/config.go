package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"taxfiler/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Text extraction is off unless a test opts in, so tests never depend on a
// real pdftotext.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Paths.TargetDir = filepath.Join(base, "filed")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.TextExtraction.Enabled = false
	cfgVal.Watch.SettleMillis = 50
	cfgVal.Watch.PollMillis = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(cfgVal.Paths.InboxDir, 0o755); err != nil {
		t.Fatalf("mkdir inbox: %v", err)
	}
	return builder.cfg
}

// WithoutBackup disables pre-move backup copies.
func WithoutBackup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Filing.Backup = false
	}
}

// WithoutSubfolders files documents directly into the target directory.
func WithoutSubfolders() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Filing.CreateSubfolders = false
	}
}

// WithTextExtraction enables pdftotext probing using the named binary.
func WithTextExtraction(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TextExtraction.Enabled = true
		b.cfg.TextExtraction.PdftotextBinary = binary
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, pdftotext is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"pdftotext"}
		}
		binDir := StubBinaries(b.t, b.baseDir, "#!/bin/sh\nexit 0\n", names...)
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// StubBinaries writes script as an executable under base/bin for each name
// and returns the bin directory.
func StubBinaries(t testing.TB, base, script string, names ...string) string {
	t.Helper()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	return binDir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"taxfiler/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantTarget := filepath.Join(tempHome, "Documents", "tax", "filed")
	if cfg.Paths.TargetDir != wantTarget {
		t.Fatalf("unexpected target dir: got %q want %q", cfg.Paths.TargetDir, wantTarget)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, ".local", "share", "taxfiler") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if !cfg.Filing.CreateSubfolders || !cfg.Filing.Backup {
		t.Fatalf("expected subfolders and backup enabled by default: %+v", cfg.Filing)
	}
	if cfg.Filing.DefaultPeriod != "" {
		t.Fatalf("expected empty default period, got %q", cfg.Filing.DefaultPeriod)
	}
	if got := strings.Join(cfg.Filing.Extensions, ","); got != ".pdf,.csv" {
		t.Fatalf("unexpected extensions: %s", got)
	}
	if cfg.Watch.SettleMillis != 2000 || cfg.Watch.PollMillis != 100 {
		t.Fatalf("unexpected watch defaults: %+v", cfg.Watch)
	}
	if cfg.PdftotextBinary() != "pdftotext" {
		t.Fatalf("unexpected pdftotext binary: %q", cfg.PdftotextBinary())
	}
	if cfg.BackupDir() != filepath.Join(wantTarget, ".backup") {
		t.Fatalf("unexpected backup dir: %q", cfg.BackupDir())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.TargetDir); !os.IsNotExist(err) {
		t.Fatalf("target dir must be left for filing to create, stat err = %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "taxfiler.toml")

	type payload struct {
		Paths struct {
			InboxDir  string `toml:"inbox_dir"`
			TargetDir string `toml:"target_dir"`
		} `toml:"paths"`
		Filing struct {
			DefaultPeriod string   `toml:"default_period"`
			Extensions    []string `toml:"extensions"`
		} `toml:"filing"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.InboxDir = filepath.Join(tempDir, "inbox")
	custom.Paths.TargetDir = filepath.Join(tempDir, "filed")
	custom.Filing.DefaultPeriod = "２４０３"
	custom.Filing.Extensions = []string{"PDF", ".pdf", " csv "}
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.TargetDir != custom.Paths.TargetDir {
		t.Fatalf("unexpected target dir: %q", cfg.Paths.TargetDir)
	}
	if cfg.Filing.DefaultPeriod != "2403" {
		t.Fatalf("expected full-width period folded to ASCII, got %q", cfg.Filing.DefaultPeriod)
	}
	if got := strings.Join(cfg.Filing.Extensions, ","); got != ".pdf,.csv" {
		t.Fatalf("expected normalized extensions, got %s", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if !cfg.AcceptsExtension(".PDF") || cfg.AcceptsExtension(".txt") {
		t.Fatal("unexpected AcceptsExtension result")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "taxfiler.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\ntarget = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing target", func(c *config.Config) { c.Paths.TargetDir = "" }, "paths.target_dir"},
		{"missing inbox", func(c *config.Config) { c.Paths.InboxDir = "" }, "paths.inbox_dir"},
		{"bad extension", func(c *config.Config) { c.Filing.Extensions = []string{".txt"} }, "filing.extensions"},
		{"short period", func(c *config.Config) { c.Filing.DefaultPeriod = "243" }, "filing.default_period"},
		{"alpha period", func(c *config.Config) { c.Filing.DefaultPeriod = "24AB" }, "filing.default_period"},
		{"poll above settle", func(c *config.Config) { c.Watch.PollMillis = 5000 }, "watch.poll_ms"},
		{"negative backup retention", func(c *config.Config) { c.Backup.RetentionDays = -1 }, "backup.retention_days"},
		{"bare ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "tax-inbox" }, "notifications.ntfy_topic"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.InboxDir = "/srv/inbox"
			cfg.Paths.TargetDir = "/srv/filed"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	target := filepath.Join(tempHome, "config", "taxfiler.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Paths.InboxDir != filepath.Join(tempHome, "Documents", "tax", "inbox") {
		t.Fatalf("unexpected inbox dir from sample: %q", cfg.Paths.InboxDir)
	}
	if cfg.Backup.RetentionDays != 90 {
		t.Fatalf("unexpected backup retention: %d", cfg.Backup.RetentionDays)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/filed")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(tempHome, "filed") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("expected empty path to stay empty, got %q", got)
	}
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InboxDir  string `toml:"inbox_dir"`
	TargetDir string `toml:"target_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Filing contains configuration for renaming and placing documents.
type Filing struct {
	CreateSubfolders bool     `toml:"create_subfolders"`
	Backup           bool     `toml:"backup"`
	DefaultPeriod    string   `toml:"default_period"`
	Extensions       []string `toml:"extensions"`
}

// TextExtraction contains configuration for reading PDF text with pdftotext.
type TextExtraction struct {
	Enabled         bool   `toml:"enabled"`
	PdftotextBinary string `toml:"pdftotext_binary"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Watch contains configuration for the inbox folder watcher.
type Watch struct {
	SettleMillis int  `toml:"settle_ms"`
	PollMillis   int  `toml:"poll_ms"`
	IgnoreHidden bool `toml:"ignore_hidden"`
	InitialScan  bool `toml:"initial_scan"`
}

// Backup contains configuration for pre-move backup copies.
type Backup struct {
	RetentionDays int `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push messages.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	// NotifySuccess also reports batches where every file was filed.
	NotifySuccess bool `toml:"notify_success"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for taxfiler.
//
// Configuration sections by subsystem:
//   - Paths: inbox, filing target, state database, and log directories
//   - Filing: subfolder placement, backups, period fallback, accepted extensions
//   - TextExtraction: optional pdftotext metadata probing
//   - Watch: folder watcher settle and poll intervals
//   - Backup: backup retention
//   - Notifications: ntfy topic for batch and failure alerts
//   - Logging: log format, level, and retention
type Config struct {
	Paths          Paths          `toml:"paths"`
	Filing         Filing         `toml:"filing"`
	TextExtraction TextExtraction `toml:"text_extraction"`
	Watch          Watch          `toml:"watch"`
	Backup         Backup         `toml:"backup"`
	Notifications  Notifications  `toml:"notifications"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("taxfiler.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. TargetDir is left
// alone; filing creates it on first use, so dry runs and read-only commands
// never touch the archive.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the processed-file tracking database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "taxfiler.db")
}

// LockPath returns the advisory lock file that serializes organize batches.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "organize.lock")
}

// BackupDir returns the directory that receives pre-move backup copies.
func (c *Config) BackupDir() string {
	return filepath.Join(c.Paths.TargetDir, backupDirName)
}

// LogPath returns the main log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "taxfiler.log")
}

// PdftotextBinary returns the pdftotext executable name.
func (c *Config) PdftotextBinary() string {
	if bin := strings.TrimSpace(c.TextExtraction.PdftotextBinary); bin != "" {
		return bin
	}
	return defaultPdftotextBinary
}

// AcceptsExtension reports whether a file extension (with dot, any case) is
// configured for filing.
func (c *Config) AcceptsExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	for _, allowed := range c.Filing.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

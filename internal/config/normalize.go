package config

import (
	"fmt"
	"strings"

	"taxfiler/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFiling()
	c.normalizeTextExtraction()
	c.normalizeWatch()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InboxDir, err = expandPath(strings.TrimSpace(c.Paths.InboxDir)); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if c.Paths.TargetDir, err = expandPath(strings.TrimSpace(c.Paths.TargetDir)); err != nil {
		return fmt.Errorf("paths.target_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFiling() {
	c.Filing.DefaultPeriod = textutil.FoldWidth(strings.TrimSpace(c.Filing.DefaultPeriod))
	if len(c.Filing.Extensions) == 0 {
		c.Filing.Extensions = defaultExtensions()
		return
	}
	exts := make([]string, 0, len(c.Filing.Extensions))
	seen := make(map[string]struct{}, len(c.Filing.Extensions))
	for _, ext := range c.Filing.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Filing.Extensions = exts
}

func (c *Config) normalizeTextExtraction() {
	c.TextExtraction.PdftotextBinary = strings.TrimSpace(c.TextExtraction.PdftotextBinary)
	if c.TextExtraction.PdftotextBinary == "" {
		c.TextExtraction.PdftotextBinary = defaultPdftotextBinary
	}
	if c.TextExtraction.TimeoutSeconds == 0 {
		c.TextExtraction.TimeoutSeconds = defaultTextTimeoutSeconds
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.SettleMillis == 0 {
		c.Watch.SettleMillis = defaultWatchSettleMillis
	}
	if c.Watch.PollMillis == 0 {
		c.Watch.PollMillis = defaultWatchPollMillis
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds == 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

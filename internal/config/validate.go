package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFiling(); err != nil {
		return err
	}
	if err := c.validateTextExtraction(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TargetDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("paths.target_dir must be set. Edit %s (create with 'taxfiler config init')", defaultPath)
	}
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.InboxDir == c.Paths.TargetDir && !c.Filing.CreateSubfolders {
		return errors.New("paths.inbox_dir and paths.target_dir must differ when filing.create_subfolders is false")
	}
	return nil
}

func (c *Config) validateFiling() error {
	for _, ext := range c.Filing.Extensions {
		switch ext {
		case ".pdf", ".csv":
		default:
			return fmt.Errorf("filing.extensions: unsupported extension %q (allowed: .pdf, .csv)", ext)
		}
	}
	if period := c.Filing.DefaultPeriod; period != "" {
		if len(period) != 4 {
			return fmt.Errorf("filing.default_period must be four digits (YYMM), got %q", period)
		}
		for _, r := range period {
			if r < '0' || r > '9' {
				return fmt.Errorf("filing.default_period must be four digits (YYMM), got %q", period)
			}
		}
	}
	return nil
}

func (c *Config) validateTextExtraction() error {
	if !c.TextExtraction.Enabled {
		return nil
	}
	if c.TextExtraction.TimeoutSeconds < 0 {
		return errors.New("text_extraction.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.SettleMillis < 0 {
		return errors.New("watch.settle_ms must be positive")
	}
	if c.Watch.PollMillis < 0 {
		return errors.New("watch.poll_ms must be positive")
	}
	if c.Watch.PollMillis > c.Watch.SettleMillis {
		return errors.New("watch.poll_ms must not exceed watch.settle_ms")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Backup.RetentionDays < 0 {
		return errors.New("backup.retention_days must be zero or positive")
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package config

const (
	defaultConfigPath            = "~/.config/taxfiler/config.toml"
	defaultInboxDir              = "~/Documents/tax/inbox"
	defaultTargetDir             = "~/Documents/tax/filed"
	defaultStateDir              = "~/.local/share/taxfiler"
	defaultLogDir                = "~/.local/share/taxfiler/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultBackupRetentionDays   = 90
	defaultPdftotextBinary       = "pdftotext"
	backupDirName                = ".backup"
	defaultNtfyTimeoutSeconds    = 10
	defaultTextTimeoutSeconds    = 30
	defaultWatchSettleMillis     = 2000
	defaultWatchPollMillis       = 100
	defaultCreateSubfolders      = true
	defaultBackupEnabled         = true
	defaultTextExtractionEnabled = true
)

func defaultExtensions() []string {
	return []string{".pdf", ".csv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:  defaultInboxDir,
			TargetDir: defaultTargetDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Filing: Filing{
			CreateSubfolders: defaultCreateSubfolders,
			Backup:           defaultBackupEnabled,
			Extensions:       defaultExtensions(),
		},
		TextExtraction: TextExtraction{
			Enabled:         defaultTextExtractionEnabled,
			PdftotextBinary: defaultPdftotextBinary,
			TimeoutSeconds:  defaultTextTimeoutSeconds,
		},
		Watch: Watch{
			SettleMillis: defaultWatchSettleMillis,
			PollMillis:   defaultWatchPollMillis,
			IgnoreHidden: true,
			InitialScan:  true,
		},
		Backup: Backup{
			RetentionDays: defaultBackupRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

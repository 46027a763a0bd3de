package organizer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taxfiler/internal/config"
	"taxfiler/internal/filer"
	"taxfiler/internal/logging"
	"taxfiler/internal/notifications"
	"taxfiler/internal/pdftext"
	"taxfiler/internal/tracking"
)

// Settings are the filing parameters applied to every file in a batch.
type Settings struct {
	TargetDir        string
	CreateSubfolders bool
	Backup           bool
	// DefaultPeriod replaces an unknown fiscal period before the XXXX
	// placeholder is used.
	DefaultPeriod string
}

// SettingsFromConfig extracts filing settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		TargetDir:        cfg.Paths.TargetDir,
		CreateSubfolders: cfg.Filing.CreateSubfolders,
		Backup:           cfg.Filing.Backup,
		DefaultPeriod:    strings.TrimSpace(cfg.Filing.DefaultPeriod),
	}
}

// TextExtractor reads the text layer of a document.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// HistoryRecorder persists batch summaries.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, entry tracking.HistoryEntry) (int64, error)
}

// ProgressFunc is called after each file with the running count.
type ProgressFunc func(done, total int, res filer.Result)

// Organizer sequences classification, naming, and filing.
type Organizer struct {
	settings Settings
	engine   *filer.Engine
	tracker  tracking.Tracker
	history  HistoryRecorder
	text     TextExtractor
	lockPath string
	progress ProgressFunc
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithTracker sets the processed-file tracker consulted and updated by batches.
func WithTracker(t tracking.Tracker) Option {
	return func(o *Organizer) { o.tracker = t }
}

// WithHistory sets where batch summaries are recorded.
func WithHistory(h HistoryRecorder) Option {
	return func(o *Organizer) { o.history = h }
}

// WithTextExtractor enables PDF text probing.
func WithTextExtractor(x TextExtractor) Option {
	return func(o *Organizer) { o.text = x }
}

// WithLockFile serializes ProcessFiles across processes using path.
func WithLockFile(path string) Option {
	return func(o *Organizer) { o.lockPath = path }
}

// WithProgress registers a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Organizer) { o.progress = fn }
}

// WithNotifier sends batch summaries and unclassified files to svc.
func WithNotifier(svc notifications.Service) Option {
	return func(o *Organizer) { o.notifier = svc }
}

// WithEngine replaces the default filer engine.
func WithEngine(e *filer.Engine) Option {
	return func(o *Organizer) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithClock overrides the batch timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Organizer) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs an Organizer for settings.
func New(settings Settings, logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "organizer"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = filer.NewEngine(logger)
	}
	return o
}

// NewFromConfig wires an Organizer from the configuration and tracking
// store: the store serves as tracker and history, pdftotext is used when text
// extraction is enabled, batches take the configured lock file, and results
// are pushed to the configured ntfy topic.
func NewFromConfig(cfg *config.Config, store *tracking.Store, logger *slog.Logger, opts ...Option) *Organizer {
	base := []Option{WithLockFile(cfg.LockPath()), WithNotifier(notifications.NewService(cfg))}
	if store != nil {
		base = append(base, WithTracker(store), WithHistory(store))
	}
	if cfg.TextExtraction.Enabled {
		timeout := time.Duration(cfg.TextExtraction.TimeoutSeconds) * time.Second
		base = append(base, WithTextExtractor(pdftext.New(cfg.PdftotextBinary(), timeout)))
	}
	return New(SettingsFromConfig(cfg), logger, append(base, opts...)...)
}


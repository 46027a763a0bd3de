package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"taxfiler/internal/config"
	"taxfiler/internal/logging"
	"taxfiler/internal/notifications"
	"taxfiler/internal/organizer"
	"taxfiler/internal/tracking"
	"taxfiler/internal/watcher"
)

const (
	lockRetryInterval = time.Second
	lockRetryAttempts = 30
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and file documents as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore(func(cfg *config.Config, store *tracking.Store) error {
				lock := flock.New(watchLockPath(cfg))
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire watch lock: %w", err)
				}
				if !ok {
					return errors.New("another taxfiler watch instance is already running")
				}
				defer func() { _ = lock.Unlock() }()

				// One session serves both sides so a document moved out of the
				// inbox can be filed again under the same name.
				session := tracking.NewSession(store)
				org := organizer.NewFromConfig(cfg, store, logger, organizer.WithTracker(session))
				w, err := watcher.New(watcher.Options{
					Dir:         cfg.Paths.InboxDir,
					Filter:      inboxFilter(cfg),
					Settle:      time.Duration(cfg.Watch.SettleMillis) * time.Millisecond,
					Poll:        time.Duration(cfg.Watch.PollMillis) * time.Millisecond,
					InitialScan: cfg.Watch.InitialScan,
					Tracker:     session,
					Logger:      logger,
				}, fileArrival(org, notifications.NewService(cfg), logger))
				if err != nil {
					return err
				}
				if err := w.Start(signalCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", w.Dir())
				<-signalCtx.Done()
				w.Stop()
				return nil
			})
		},
	}
}

func watchLockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "watch.lock")
}

// fileArrival files one settled document. A manual organize run holding the
// batch lock delays the file rather than dropping it.
func fileArrival(org *organizer.Organizer, notifier notifications.Service, logger *slog.Logger) watcher.Handler {
	return func(ctx context.Context, path string) {
		for attempt := 0; ; attempt++ {
			batch, err := org.ProcessFiles(ctx, []string{path})
			if err == nil {
				for _, res := range batch.Results {
					if !res.Succeeded {
						logging.WarnWithContext(logger, "inbox document left in place", "watch_file_failed",
							logging.String(logging.FieldSourcePath, res.SourcePath),
							logging.String("reason", res.ErrorMessage),
							logging.String(logging.FieldErrorHint, "file it with taxfiler rename"),
						)
					}
				}
				return
			}
			if !errors.Is(err, organizer.ErrBatchInProgress) || attempt >= lockRetryAttempts {
				logging.ErrorWithContext(logger, "watch batch failed", "watch_batch_failed",
					logging.String(logging.FieldSourcePath, path),
					logging.Error(err),
				)
				_ = notifier.NotifyError(context.WithoutCancel(ctx), err, "watch")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(lockRetryInterval):
			}
		}
	}
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"taxfiler/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var level string
	var batch string
	var event string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the taxfiler log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{MinLevel: logs.ParseFilterLevel(level), BatchID: batch, EventType: event}
			entries, offset, err := logs.Last(cfg.LogPath(), lines, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			emit := func(e logs.Entry) {
				if ctx.JSONMode() {
					_ = writeJSON(cmd, e)
					return
				}
				fmt.Fprintln(out, e.String())
			}
			if !follow && ctx.JSONMode() {
				if entries == nil {
					entries = []logs.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			for _, e := range entries {
				emit(e)
			}
			if !follow {
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(signalCtx, cfg.LogPath(), logs.FollowOptions{Offset: offset, Filter: filter}, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&batch, "batch", "", "Only entries from this batch ID (prefix match)")
	cmd.Flags().StringVar(&event, "event", "", "Only entries with this event_type")
	return cmd
}

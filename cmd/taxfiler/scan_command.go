package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"taxfiler/internal/config"
	"taxfiler/internal/scan"
	"taxfiler/internal/tracking"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List documents waiting in the inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *tracking.Store) error {
				var tracker tracking.Tracker = store
				if all {
					tracker = nil
				}
				infos, err := scan.Dir(cmd.Context(), cfg.Paths.InboxDir, inboxFilter(cfg), tracker)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if infos == nil {
						infos = []scan.FileInfo{}
					}
					return writeJSON(cmd, infos)
				}
				if len(infos) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No documents in %s\n", cfg.Paths.InboxDir)
					return nil
				}
				rows := make([][]string, 0, len(infos))
				for _, info := range infos {
					rows = append(rows, []string{info.Name, strconv.FormatInt(info.Size, 10), formatTimestamp(info.ModifiedAt)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Bytes", "Modified"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include files already recorded as processed")
	return cmd
}

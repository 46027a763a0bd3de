package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"taxfiler/internal/config"
	"taxfiler/internal/tracking"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent organize batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *tracking.Store) error {
				entries, err := store.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if entries == nil {
						entries = []tracking.HistoryEntry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(e.ID, 10),
						e.BatchID,
						formatTimestamp(e.StartedAt),
						strconv.Itoa(e.Total),
						strconv.Itoa(e.Success),
						strconv.Itoa(e.Failure),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Batch", "Started", "Total", "Filed", "Failed"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of batches to show (0 for all)")
	cmd.AddCommand(newHistoryFilesCommand(ctx))
	return cmd
}

func newHistoryFilesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "files",
		Short: "Show documents recorded as processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *tracking.Store) error {
				records, err := store.ListProcessed(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if records == nil {
						records = []tracking.Record{}
					}
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No documents recorded")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{r.OriginalName, r.NewName, dash(r.DocumentType), formatTimestamp(r.ProcessedAt)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Original", "Filed as", "Type", "Processed"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of files to show (0 for all)")
	return cmd
}

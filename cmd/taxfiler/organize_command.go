package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"taxfiler/internal/config"
	"taxfiler/internal/filer"
	"taxfiler/internal/organizer"
	"taxfiler/internal/scan"
	"taxfiler/internal/tracking"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize [FILE...]",
		Short: "Classify, rename, and file documents (defaults to the inbox)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *tracking.Store) error {
				paths, err := organizeInputs(cmd.Context(), cfg, store, args)
				if err != nil {
					return err
				}
				if len(paths) == 0 {
					if ctx.JSONMode() {
						return writeJSON(cmd, organizer.BatchResult{Results: []filer.Result{}})
					}
					fmt.Fprintln(cmd.OutOrStdout(), "No documents to organize")
					return nil
				}
				if dryRun {
					return runDryRun(cmd, ctx, cfg, store, logger, paths)
				}
				return runOrganize(cmd, ctx, cfg, store, logger, paths)
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be filed without moving anything")
	return cmd
}

func organizeInputs(ctx context.Context, cfg *config.Config, store *tracking.Store, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	infos, err := scan.Dir(ctx, cfg.Paths.InboxDir, inboxFilter(cfg), store)
	if err != nil {
		return nil, err
	}
	return scan.Paths(infos), nil
}

func inboxFilter(cfg *config.Config) scan.Filter {
	return scan.Filter{Extensions: cfg.Filing.Extensions, IgnoreHidden: cfg.Watch.IgnoreHidden}
}

func runDryRun(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *tracking.Store, logger *slog.Logger, paths []string) error {
	org := organizer.NewFromConfig(cfg, store, logger)
	plans := org.Plan(cmd.Context(), paths)
	if ctx.JSONMode() {
		return writeJSON(cmd, plans)
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		outcome := p.Destination
		switch {
		case p.Skipped:
			outcome = "skip: " + p.Reason
		case p.Err != nil:
			outcome = p.Reason
		}
		rows = append(rows, []string{p.OriginalName, string(p.Classification.Category), outcome})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Category", "Would file to"}, rows, nil))
	return nil
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *tracking.Store, logger *slog.Logger, paths []string) error {
	var opts []organizer.Option
	if !ctx.JSONMode() && isTerminal(cmd.ErrOrStderr()) {
		bar := newProgressBar(cmd, len(paths))
		opts = append(opts, organizer.WithProgress(func(int, int, filer.Result) {
			_ = bar.Add(1)
		}))
	}
	org := organizer.NewFromConfig(cfg, store, logger, opts...)

	batch, err := org.ProcessFiles(cmd.Context(), paths)
	if err != nil {
		return err
	}

	if ctx.JSONMode() {
		if err := writeJSON(cmd, batch); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(batch.Results))
		for _, res := range batch.Results {
			status, detail := "filed", res.DestinationPath
			if !res.Succeeded {
				status, detail = "failed", res.ErrorMessage
			}
			rows = append(rows, []string{filepath.Base(res.SourcePath), status, detail})
		}
		for _, path := range batch.Skipped {
			rows = append(rows, []string{filepath.Base(path), "skipped", "already processed"})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderTable([]string{"File", "Status", "Detail"}, rows, nil))
		fmt.Fprintln(out, summaryLine(batch.Success, batch.Failure, len(batch.Skipped)))
	}
	if batch.Failure > 0 {
		return fmt.Errorf("%d of %d files could not be filed", batch.Failure, batch.Total)
	}
	return nil
}

func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	w := cmd.ErrOrStderr()
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Filing documents...[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taxfiler/internal/backup"
	"taxfiler/internal/config"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Inspect, prune, and restore pre-move backup copies",
	}
	dir := func() (string, error) { return resolveBackupDir(ctx, target) }
	cmd.AddCommand(newBackupListCommand(ctx, dir))
	cmd.AddCommand(newBackupPruneCommand(ctx, dir))
	cmd.AddCommand(newBackupRestoreCommand(dir))
	cmd.PersistentFlags().StringVar(&target, "target", "", "Target directory whose .backup folder is used (defaults to paths.target_dir)")
	return cmd
}

// resolveBackupDir mirrors rename --target: backups live under the target
// the document was filed into.
func resolveBackupDir(ctx *commandContext, target string) (string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(target) == "" {
		return cfg.BackupDir(), nil
	}
	root, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve target: %w", err)
	}
	return filepath.Join(root, backup.DirName), nil
}

func newBackupListCommand(ctx *commandContext, backupDir func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup copies, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backupDir()
			if err != nil {
				return err
			}
			entries, err := backup.List(dir)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				if entries == nil {
					entries = []backup.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, e.OriginalName, formatTimestamp(e.CreatedAt), strconv.FormatInt(e.Size, 10)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Backup", "Original", "Created", "Bytes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newBackupPruneCommand(ctx *commandContext, backupDir func() (string, error)) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete backup copies older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := backupDir()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			retention := cfg.Backup.RetentionDays
			if cmd.Flags().Changed("days") {
				retention = days
			}
			if retention <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Backup retention disabled; nothing pruned")
				return nil
			}

			result := backup.Prune(cmd.Context(), dir, retention, time.Now(), logger)
			if ctx.JSONMode() {
				type pruneOutput struct {
					Removed []string `json:"removed"`
					Kept    int      `json:"kept"`
					Errors  []string `json:"errors,omitempty"`
				}
				out := pruneOutput{Removed: result.Removed, Kept: result.Kept}
				if out.Removed == nil {
					out.Removed = []string{}
				}
				for _, e := range result.Errors {
					out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", e.Path, e.Error))
				}
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, path := range result.Removed {
					fmt.Fprintf(out, "Removed %s\n", filepath.Base(path))
				}
				fmt.Fprintf(out, "Pruned %d backups older than %d days; %d kept\n", len(result.Removed), retention, result.Kept)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d backups could not be removed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Override backup.retention_days")
	return cmd
}

func newBackupRestoreCommand(backupDir func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "restore BACKUP DESTINATION",
		Short: "Copy a backup back to DESTINATION, replacing any file there",
		Long:  "BACKUP may be a path or a file name inside the backup directory.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backupDir()
			if err != nil {
				return err
			}
			source := args[0]
			if _, err := os.Stat(source); errors.Is(err, os.ErrNotExist) && filepath.Base(source) == source {
				source = filepath.Join(dir, source)
			}
			if err := backup.Restore(source, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", filepath.Base(source), args[1])
			return nil
		},
	}
}

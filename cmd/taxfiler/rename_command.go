package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taxfiler/internal/config"
	"taxfiler/internal/filer"
)

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var target string
	var noSubfolders bool
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "rename SOURCE CANONICAL_NAME",
		Short: "File one document under an explicit canonical name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			targetDir := cfg.Paths.TargetDir
			if strings.TrimSpace(target) != "" {
				if targetDir, err = config.ExpandPath(target); err != nil {
					return fmt.Errorf("resolve target: %w", err)
				}
			}

			res := filer.NewEngine(logger).Rename(cmd.Context(), filer.Operation{
				SourcePath:       args[0],
				CanonicalName:    args[1],
				TargetDir:        targetDir,
				CreateSubfolders: cfg.Filing.CreateSubfolders && !noSubfolders,
				Backup:           cfg.Filing.Backup && !noBackup,
			})

			if ctx.JSONMode() {
				if err := writeJSON(cmd, res); err != nil {
					return err
				}
			} else if res.Succeeded {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Filed %s\n", res.DestinationPath)
				if res.BackupPath != "" {
					fmt.Fprintf(out, "Backup %s\n", res.BackupPath)
				}
			}
			if !res.Succeeded {
				return fmt.Errorf("rename failed: %s", res.ErrorMessage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target directory (defaults to paths.target_dir); backups go to its .backup folder, see backup --target")
	cmd.Flags().BoolVar(&noSubfolders, "no-subfolders", false, "Place the file directly in the target directory")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip the pre-move backup copy")
	return cmd
}

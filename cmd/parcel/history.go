package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/parcel/internal/config"
	"github.com/nao1215/parcel/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded pack operations",
		Long: `History lists the pack operations recorded in the local history
database, newest first.

Examples:
  # Show the latest operations
  parcel history

  # Show the latest 50 as JSON
  parcel history --limit 50 --json

  # Delete records older than 30 days
  parcel history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit,
		"Maximum number of records to show")
	cmd.Flags().String("dir", "",
		"History database directory (default: the XDG data directory)")
	cmd.Flags().Duration("prune", 0,
		"Delete records older than this age instead of listing (e.g. 720h)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file path (creates directories if needed)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return config.ErrInvalidHistoryLimit
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	prune, err := cmd.Flags().GetDuration("prune")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingOutputFormats
	}
	outputFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	if prune > 0 {
		removed, err := db.Prune(ctx, prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d records older than %s\n", removed, prune)
		return nil
	}

	records, err := db.RecentRecords(ctx, limit)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := newReportWriter(out, jsonOutput, markdownOutput, getVerboseFlag(cmd))
	_, err = writer.WriteHistory(records)
	return err
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/parcel/internal/config"
	"github.com/nao1215/parcel/internal/extract"
	"github.com/nao1215/parcel/internal/report"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List an archive's contents without extracting it",
		Long: `Inspect reads an archive and prints its manifest: the entries, their
sizes, modes, and timestamps.

Examples:
  # Human-readable manifest
  parcel inspect report.pdf.tar.gz

  # Manifest as JSON
  parcel inspect --json report.pdf.tar.gz

  # Markdown manifest written to a file
  parcel inspect --markdown -o manifest.md report.pdf.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().String("codec", "",
		"Compression codec to read through: none, gzip, or lz4 (default: inferred from the extension)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file path (creates directories if needed)")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	codec, err := cmd.Flags().GetString("codec")
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

	manifest, err := extract.Manifest(context.Background(), args[0], codec)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	writer := newReportWriter(out, jsonOutput, markdownOutput, getVerboseFlag(cmd))
	_, err = writer.WriteManifest(manifest)
	return err
}

// newReportWriter picks the report writer matching the format flags.
func newReportWriter(out io.Writer, jsonOutput, markdownOutput, verbose bool) report.Writer {
	switch {
	case jsonOutput:
		return report.NewJSONWriter(out, report.WithIndent(true))
	case markdownOutput:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(verbose))
	}
}

// openOutput returns the report destination: the named file, or the
// command's stdout when path is empty.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

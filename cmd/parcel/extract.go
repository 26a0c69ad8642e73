package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/parcel/internal/extract"
	"github.com/nao1215/parcel/internal/log"
	"github.com/nao1215/parcel/internal/report"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive> [directory]",
		Short: "Extract an archive produced by pack",
		Long: `Extract unpacks an archive into a directory (default: the current one).
The compression codec is inferred from the archive's extension unless
--codec names one explicitly.

Examples:
  # Extract into the current directory
  parcel extract report.pdf.tar.gz

  # Extract into a specific directory
  parcel extract backup.tar.lz4 /tmp/restore`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runExtractCmd,
	}

	cmd.Flags().String("codec", "",
		"Compression codec to read through: none, gzip, or lz4 (default: inferred from the extension)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	codec, err := cmd.Flags().GetString("codec")
	if err != nil {
		return err
	}

	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	manifest, err := extract.Extract(ctx, args[0], dir, extract.Options{Codec: codec})
	if err != nil {
		return err
	}

	writer := report.NewSimpleWriter(cmd.OutOrStdout())
	_, err = writer.WriteManifest(manifest)
	return err
}

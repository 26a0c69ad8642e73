package main

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/parcel/internal/archive"
	"github.com/nao1215/parcel/internal/compress"
	"github.com/nao1215/parcel/internal/config"
	"github.com/nao1215/parcel/internal/database"
	"github.com/nao1215/parcel/internal/log"
	"github.com/nao1215/parcel/internal/model"
)

// NewPackCmd creates the pack command.
func NewPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [file]",
		Short: "Pack a file into a tar archive",
		Long: `Pack streams one file into one tar archive, optionally compressed.

With several files, each one becomes its own archive, produced
concurrently into the output directory.

Examples:
  # Pack a file into ./report.pdf.tar
  parcel pack report.pdf

  # Pack into a named archive, gzip compressed
  parcel pack -z gzip -o /backups/report.tar.gz report.pdf

  # Rename the entry inside the archive
  parcel pack -n modified.txt -o out.tar notes.txt

  # Pack several files into ./archives, four at a time
  parcel pack -o archives a.log b.log c.log d.log e.log

Configuration file (.parcel) example:
  defaults:
    compression: gzip
    concurrency: 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: runPackCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Archive path for one source, output directory for several (default: alongside the source)")
	cmd.Flags().StringP("compression", "z", config.DefaultCompression,
		"Compression codec: none, gzip, or lz4")
	cmd.Flags().StringP("name", "n", "",
		"Entry name inside the archive (default: the source file's base name)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of archives produced at once when packing several files")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .parcel in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the operation in the pack history database")

	return cmd
}

// runPackCmd executes the pack command.
func runPackCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPackConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runPack(ctx, cmd, cfg, logger)
}

// buildPackConfig creates a Config from cobra command flags and the
// optional configuration file.
func buildPackConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Sources = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.Destination, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.Compression, err = cmd.Flags().GetString("compression")
	if err != nil {
		return nil, err
	}
	cfg.EntryName, err = cmd.Flags().GetString("name")
	if err != nil {
		return nil, err
	}
	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	// Load defaults from the config file. An explicitly specified file
	// must exist; an implicit one may be absent.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if _, err := compress.ByName(cfg.Compression); err != nil {
		return nil, err
	}

	if cfg.Destination == "" {
		if len(cfg.Sources) == 1 {
			cfg.Destination = defaultArchivePath(cfg.Sources[0], cfg.Compression)
		} else {
			cfg.Destination = "."
		}
	}

	return cfg, nil
}

// defaultArchivePath names the archive produced next to a source file:
// source path plus ".tar" plus the codec's extension.
func defaultArchivePath(source, codec string) string {
	path := source + ".tar"
	if transform, err := compress.ByName(codec); err == nil && transform != nil {
		path += transform.Extension()
	}
	return path
}

// packOptions builds the archive options for one operation.
func packOptions(cfg *config.Config, transform compress.Transform, logger *slog.Logger) *archive.Options {
	opts := &archive.Options{Logger: logger}
	if transform != nil {
		opts.PostPackTransform = transform
	}
	if cfg.EntryName != "" {
		name := cfg.EntryName
		opts.RewriteEntryHeader = func(header *tar.Header) *tar.Header {
			header.Name = name
			return header
		}
	}
	return opts
}

// runPack executes the pack operation(s).
func runPack(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	transform, err := compress.ByName(cfg.Compression)
	if err != nil {
		return err
	}
	opts := packOptions(cfg, transform, logger)

	if len(cfg.Sources) == 1 {
		return packOne(ctx, cmd, cfg, opts)
	}
	return packMany(ctx, cmd, cfg, opts, logger)
}

// packOne packs a single source into cfg.Destination.
func packOne(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *archive.Options) error {
	source := cfg.Sources[0]
	start := time.Now()

	bytes, err := archive.Run(ctx, source, cfg.Destination, opts, func(ev archive.ProgressEvent) {
		slog.Debug("progress", "entry", ev.Header.Name, "bytes", ev.Bytes, "total", ev.Header.Size)
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s (%s in %s)\n",
		source, cfg.Destination, humanize.Bytes(uint64(bytes)), elapsed.Round(time.Millisecond))

	saveHistory(ctx, cfg, []model.PackRecord{packRecord(source, cfg.Destination, cfg, bytes, elapsed)})
	return nil
}

// packMany packs each source into its own archive under the destination
// directory.
func packMany(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts *archive.Options, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.Destination, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", cfg.Destination, err)
	}

	jobs := make([]archive.Job, 0, len(cfg.Sources))
	for _, source := range cfg.Sources {
		jobs = append(jobs, archive.Job{
			Source:      source,
			Destination: filepath.Join(cfg.Destination, filepath.Base(defaultArchivePath(source, cfg.Compression))),
			Options:     opts,
		})
	}

	packer := archive.NewBatchPacker(
		archive.WithConcurrency(cfg.Concurrency),
		archive.WithBatchLogger(logger),
	)
	results, err := packer.Pack(ctx, jobs)
	if err != nil {
		return err
	}

	var records []model.PackRecord
	var failed int
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", result.Job.Source, result.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "packed %s -> %s (%s)\n",
			result.Job.Source, result.Job.Destination, humanize.Bytes(uint64(result.Bytes)))
		records = append(records, packRecord(result.Job.Source, result.Job.Destination, cfg, result.Bytes, result.Duration))
	}
	saveHistory(ctx, cfg, records)

	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed", failed, len(results))
	}
	return nil
}

// packRecord builds the history row for one completed operation.
func packRecord(source, destination string, cfg *config.Config, bytes int64, elapsed time.Duration) model.PackRecord {
	absSource, err := filepath.Abs(source)
	if err != nil {
		absSource = source
	}
	absDestination, err := filepath.Abs(destination)
	if err != nil {
		absDestination = destination
	}
	entryName := cfg.EntryName
	if entryName == "" {
		entryName = filepath.Base(source)
	}
	return model.PackRecord{
		Source:      absSource,
		Destination: absDestination,
		EntryName:   entryName,
		Bytes:       bytes,
		Codec:       cfg.Compression,
		Duration:    elapsed,
		CreatedAt:   time.Now().UTC(),
	}
}

// saveHistory records completed operations in the history database.
// History failures are logged, not fatal: the archives are already on disk.
func saveHistory(ctx context.Context, cfg *config.Config, records []model.PackRecord) {
	if cfg.NoHistory || len(records) == 0 {
		return
	}

	db, err := database.Open(cfg.HistoryDir, database.DefaultOptions())
	if err != nil {
		slog.Warn("history database unavailable", "dir", cfg.HistoryDir, "error", err)
		return
	}
	defer db.Close()

	for i := range records {
		if _, err := db.SavePackRecord(ctx, &records[i]); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("failed to record pack history", "destination", records[i].Destination, "error", err)
		}
	}
}

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/parcel/internal/model"
)

// SimpleWriter outputs human-readable text. Plain ASCII formatting rather
// than ANSI color so the output pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables per-entry mode and timestamp columns.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteManifest implements Writer.
func (w *SimpleWriter) WriteManifest(manifest *model.Manifest) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Archive: %s\n", manifest.Path)
	fmt.Fprintf(&b, "Codec:   %s\n", manifest.Codec)
	fmt.Fprintf(&b, "Entries: %d (%s)\n", len(manifest.Entries), humanize.Bytes(uint64(manifest.TotalBytes())))
	b.WriteString("\n")

	for _, e := range manifest.Entries {
		if w.verbose {
			fmt.Fprintf(&b, "  %s  %10s  %s  %s\n",
				e.Mode, humanize.Bytes(uint64(e.Size)), e.ModTime.Format("2006-01-02 15:04:05"), e.Name)
		} else {
			fmt.Fprintf(&b, "  %10s  %s\n", humanize.Bytes(uint64(e.Size)), e.Name)
		}
	}

	return io.WriteString(w.output, b.String())
}

// WriteHistory implements Writer.
func (w *SimpleWriter) WriteHistory(records []model.PackRecord) (int, error) {
	var b strings.Builder

	if len(records) == 0 {
		b.WriteString("No pack history recorded.\n")
		return io.WriteString(w.output, b.String())
	}

	fmt.Fprintf(&b, "Pack history (%d):\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "  %s  %s -> %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Source, r.Destination)
		fmt.Fprintf(&b, "      entry %s, %s, codec %s, took %s\n",
			r.EntryName, humanize.Bytes(uint64(r.Bytes)), r.Codec, r.Duration.Round(time.Millisecond))
	}

	return io.WriteString(w.output, b.String())
}

package report

import (
	"io"

	"github.com/nao1215/parcel/internal/model"
)

// Writer defines the interface for report output. Implementations render
// an archive manifest or a pack history listing in one output format.
//
// Design decision: an interface rather than format flags on one type so
// the same rendering call can target terminal, file, or both via
// MultiWriter.
type Writer interface {
	// WriteManifest renders an archive manifest.
	// Returns the number of bytes written and any error encountered.
	WriteManifest(manifest *model.Manifest) (int, error)

	// WriteHistory renders a pack history listing, newest first.
	WriteHistory(records []model.PackRecord) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, for outputting to
// both terminal and file. It is not io.MultiWriter because the interface
// carries reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteManifest renders the manifest to all configured Writers.
// Returns the total bytes written; stops on first error.
func (m *MultiWriter) WriteManifest(manifest *model.Manifest) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteManifest(manifest)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory renders the history to all configured Writers.
func (m *MultiWriter) WriteHistory(records []model.PackRecord) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// gzipStage is a minimal post-pack transform for pipeline tests.
type gzipStage struct{}

func (gzipStage) Wrap(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
func (gzipStage) Name() string                             { return "gzip" }

// failingStage refuses to start, for the transform failure path.
type failingStage struct{ err error }

func (s failingStage) Wrap(io.Writer) (io.WriteCloser, error) { return nil, s.err }
func (failingStage) Name() string                             { return "failing" }

// nilStage returns no writer and no error.
type nilStage struct{}

func (nilStage) Wrap(io.Writer) (io.WriteCloser, error) { return nil, nil }
func (nilStage) Name() string                           { return "nil" }

// TestStageChainTransform tests the post-pack transform stage end to end
// and its failure modes.
func TestStageChainTransform(t *testing.T) {
	t.Parallel()

	t.Run("transform output decompresses back to the tar stream", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src, content := writeSourceFile(t, dir, 400)
		dst := filepath.Join(dir, "out.tar.gz")

		op, err := New(src, dst, &Options{PostPackTransform: gzipStage{}})
		if err != nil {
			t.Fatal(err)
		}
		var terminalErr error
		op.Subscribe(Observer{Error: func(err error) { terminalErr = err }})
		waitSettled(t, op)
		if terminalErr != nil {
			t.Fatalf("expected no error, got %v", terminalErr)
		}

		f, err := os.Open(dst)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			t.Fatalf("destination is not valid gzip: %v", err)
		}
		tr := tar.NewReader(gz)
		header, err := tr.Next()
		if err != nil {
			t.Fatal(err)
		}
		if header.Name != "source.bin" {
			t.Errorf("expected entry source.bin, got %s", header.Name)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, content) {
			t.Error("decompressed entry does not match source content")
		}
	})

	t.Run("transform start failure is the terminal error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src, _ := writeSourceFile(t, dir, 100)
		stageErr := errors.New("simulated transform failure")

		op, err := New(src, filepath.Join(dir, "out.bin"), &Options{
			PostPackTransform: failingStage{err: stageErr},
		})
		if err != nil {
			t.Fatal(err)
		}
		var terminalErr error
		completes := 0
		op.Subscribe(Observer{
			Error:    func(err error) { terminalErr = err },
			Complete: func() { completes++ },
		})
		waitSettled(t, op)

		if !errors.Is(terminalErr, stageErr) {
			t.Errorf("expected the transform failure, got %v", terminalErr)
		}
		if completes != 0 {
			t.Error("expected no Complete after transform failure")
		}
	})

	t.Run("transform returning no writer fails descriptively", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src, _ := writeSourceFile(t, dir, 100)

		op, err := New(src, filepath.Join(dir, "out.bin"), &Options{
			PostPackTransform: nilStage{},
		})
		if err != nil {
			t.Fatal(err)
		}
		var terminalErr error
		op.Subscribe(Observer{Error: func(err error) { terminalErr = err }})
		waitSettled(t, op)

		if terminalErr == nil {
			t.Fatal("expected an error for a writerless transform")
		}
	})
}

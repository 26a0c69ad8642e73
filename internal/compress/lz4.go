package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Transform compresses the packed stream with the lz4 frame format.
// lz4 trades ratio for speed, which suits large archives on fast disks.
type lz4Transform struct{}

// Wrap implements Transform.
func (lz4Transform) Wrap(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

// Name implements Transform.
func (lz4Transform) Name() string { return NameLZ4 }

// Extension implements Transform.
func (lz4Transform) Extension() string { return ".lz4" }

// lz4ReadCloser adapts *lz4.Reader, which has no Close, to io.ReadCloser.
type lz4ReadCloser struct{ r *lz4.Reader }

// Read implements io.Reader.
func (l lz4ReadCloser) Read(b []byte) (int, error) { return l.r.Read(b) }

// Close implements io.Closer.
func (l lz4ReadCloser) Close() error { return nil }

func newLZ4Reader(r io.Reader) io.ReadCloser {
	return lz4ReadCloser{r: lz4.NewReader(r)}
}

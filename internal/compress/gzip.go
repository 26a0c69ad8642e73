package compress

import (
	"compress/gzip"
	"io"
)

// gzipTransform compresses the packed stream with the standard library
// gzip codec at the default level.
type gzipTransform struct{}

// Wrap implements Transform.
func (gzipTransform) Wrap(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Name implements Transform.
func (gzipTransform) Name() string { return NameGzip }

// Extension implements Transform.
func (gzipTransform) Extension() string { return ".gz" }

func newGzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

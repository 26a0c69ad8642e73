package compress

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Codec names accepted by the CLI and the configuration file.
const (
	// NameNone disables the post-pack transform.
	NameNone = "none"

	// NameGzip selects the gzip transform.
	NameGzip = "gzip"

	// NameLZ4 selects the lz4 transform.
	NameLZ4 = "lz4"
)

// ErrUnknownCodec is returned for a codec name outside the supported set.
var ErrUnknownCodec = errors.New("unknown compression codec")

// Transform is a duplex stream stage: bytes written to the value returned
// by Wrap come out transformed on the wrapped writer. It satisfies the
// archiver's post-pack transform capability.
type Transform interface {
	// Wrap returns the stage's write side. Close flushes buffered output
	// to w without closing w.
	Wrap(w io.Writer) (io.WriteCloser, error)

	// Name is the codec name.
	Name() string

	// Extension is the file extension the codec conventionally appends,
	// including the leading dot.
	Extension() string
}

// ByName returns the transform for the given codec name. NameNone returns
// a nil Transform and no error, meaning "no transform stage".
func ByName(name string) (Transform, error) {
	switch strings.ToLower(name) {
	case NameNone, "":
		return nil, nil
	case NameGzip:
		return gzipTransform{}, nil
	case NameLZ4:
		return lz4Transform{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s, %s)", ErrUnknownCodec, name, NameNone, NameGzip, NameLZ4)
	}
}

// Names returns the supported codec names.
func Names() []string {
	return []string{NameNone, NameGzip, NameLZ4}
}

// DetectName infers the codec from an archive path's extension.
// Unrecognized extensions mean the archive is stored uncompressed.
func DetectName(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".tgz":
		return NameGzip
	case ".lz4":
		return NameLZ4
	default:
		return NameNone
	}
}

// NewReader wraps r with the decompressor for the given codec name.
// NameNone returns r unchanged behind a no-op closer.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(name) {
	case NameNone, "":
		return io.NopCloser(r), nil
	case NameGzip:
		return newGzipReader(r)
	case NameLZ4:
		return newLZ4Reader(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

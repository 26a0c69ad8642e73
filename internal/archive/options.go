package archive

import (
	"archive/tar"
	"io"
	"log/slog"
)

// HeaderRewriteFunc rewrites an entry header before it is written to the
// archive. The hook receives the header the packer built from the source
// file and must return the header to use, which may be the same value
// mutated in place. Returning nil is an error.
type HeaderRewriteFunc func(header *tar.Header) *tar.Header

// StreamRewriteFunc replaces an entry's byte stream. The hook receives the
// raw source stream and the (already rewritten) header and must return the
// stream whose bytes end up in the archive. Returning nil is an error.
//
// The tar format requires the entry size up front, so a hook that changes
// the byte count must also rewrite header.Size via a HeaderRewriteFunc;
// otherwise the packer fails when the stream and header disagree.
type StreamRewriteFunc func(raw io.Reader, header *tar.Header) io.Reader

// Transform is the capability required of a post-pack stage inserted
// between the packer and the destination writer. It is deliberately a
// duplex shape: Wrap consumes bytes written to the returned WriteCloser
// and forwards the transformed result to w, so a value that is merely a
// source or merely a sink cannot satisfy it.
type Transform interface {
	// Wrap returns the stage's write side. Close must flush any buffered
	// output to w; it must not close w itself.
	Wrap(w io.Writer) (io.WriteCloser, error)

	// Name identifies the transform in errors, logs, and history records.
	Name() string
}

// Options configures a single pack operation. The zero value packs the
// source file as-is with no transform.
//
// Entry selection, filtering, and path stripping are deliberately
// unsupported: the struct cannot express them, and the configuration-file
// boundary rejects them by name (see internal/config).
type Options struct {
	// RewriteEntryHeader rewrites per-entry metadata. Nil means keep the
	// header the packer built.
	RewriteEntryHeader HeaderRewriteFunc

	// RewriteEntryStream replaces the per-entry byte stream. Nil means
	// pack the source bytes unchanged.
	RewriteEntryStream StreamRewriteFunc

	// PostPackTransform is inserted between the packer and the destination
	// writer. Nil means the packer writes straight to the destination.
	PostPackTransform Transform

	// Logger receives debug-level stage logging. Nil means slog.Default.
	Logger *slog.Logger
}

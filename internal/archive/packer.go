package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// entryPacker produces the tar byte stream for exactly one entry: the
// source file. The header-rewrite and stream-rewrite hooks run before any
// content bytes move; the progress emitter wraps whatever stream the hooks
// left in place.
type entryPacker struct {
	source        string
	info          os.FileInfo
	rewriteHeader HeaderRewriteFunc
	rewriteStream StreamRewriteFunc
	emit          func(ProgressEvent)
}

// pack writes the complete single-entry archive to w. The first failure is
// returned as-is; a hook returning nil becomes a single HookError on this
// stage rather than an opaque downstream failure.
func (p *entryPacker) pack(ctx context.Context, w io.Writer) error {
	name := filepath.Base(p.source)

	header, err := tar.FileInfoHeader(p.info, "")
	if err != nil {
		return fmt.Errorf("build header for %s: %w", p.source, err)
	}
	header.Name = name

	if p.rewriteHeader != nil {
		if header = p.rewriteHeader(header); header == nil {
			return &HookError{Hook: "header", Entry: name}
		}
	}

	f, err := os.Open(p.source)
	if err != nil {
		return fmt.Errorf("open source %s: %w", p.source, err)
	}
	defer f.Close()

	var content io.Reader = f
	if p.rewriteStream != nil {
		if content = p.rewriteStream(f, header); content == nil {
			return &HookError{Hook: "stream", Entry: header.Name}
		}
	}

	progress := newProgressReader(content, header, p.emit)
	progress.start()

	tw := tar.NewWriter(w)
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header for %s: %w", header.Name, err)
	}
	if _, err := io.Copy(tw, &contextReader{ctx: ctx, r: progress}); err != nil {
		return fmt.Errorf("pack %s: %w", header.Name, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalize archive for %s: %w", header.Name, err)
	}
	return nil
}

// contextReader aborts an in-flight copy as soon as its context is done,
// so cancellation does not wait for the current entry to drain.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// Read implements io.Reader.
func (c *contextReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}

package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
)

// stageChain is the ordered set of stream stages for one operation:
// packer, optional post-pack transform, destination writer. It is built
// after the destination writer is finalized and consumed exactly once.
type stageChain struct {
	packer    *entryPacker
	transform Transform
	dst       *os.File
	logger    *slog.Logger
}

// pump drives all stages concurrently as one linear pipe. The packer and
// the writer run in their own goroutines connected by an io.Pipe, so the
// packer is never ahead of what the writer can consume. The first terminal
// signal from any stage wins: a failure cancels the group context, which
// unblocks both pipe ends and unwinds the other stage; success is reported
// only once the bytes have fully drained and the destination is synced.
//
// The destination file handle is closed on every path out of this method.
func (c *stageChain) pump(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	pr, pw := io.Pipe()

	// A done context must unblock both pipe ends immediately; a blocked
	// pipe read or write cannot observe the context on its own.
	stop := context.AfterFunc(ctx, func() {
		cause := context.Cause(ctx)
		_ = pw.CloseWithError(cause)
		_ = pr.CloseWithError(cause)
	})
	defer stop()

	g.Go(func() error {
		err := c.packer.pack(ctx, pw)
		// Hand the outcome to the reading side: EOF on success, the
		// packer's own error otherwise.
		_ = pw.CloseWithError(err)
		return err
	})

	g.Go(func() error {
		defer c.dst.Close()

		var sink io.WriteCloser = nopWriteCloser{c.dst}
		if c.transform != nil {
			wc, err := c.transform.Wrap(c.dst)
			if err != nil {
				err = fmt.Errorf("start %s transform: %w", c.transform.Name(), err)
				_ = pr.CloseWithError(err)
				return err
			}
			if wc == nil {
				err := fmt.Errorf("transform %s returned no writer: a post-pack transform must produce a writable stage", c.transform.Name())
				_ = pr.CloseWithError(err)
				return err
			}
			sink = wc
		}

		if err := c.copyToSink(pr, sink); err != nil {
			return err
		}
		if err := sink.Close(); err != nil {
			return fmt.Errorf("flush destination %s: %w", c.dst.Name(), err)
		}
		if err := c.dst.Sync(); err != nil {
			return fmt.Errorf("sync destination %s: %w", c.dst.Name(), err)
		}
		c.logger.Debug("destination drained", "destination", c.dst.Name())
		return nil
	})

	return g.Wait()
}

// copyToSink forwards the packed stream into the sink. Write failures are
// wrapped here and pushed back up the pipe; read failures already carry the
// packer's description and are returned verbatim so the caller sees exactly
// one error for one upstream failure.
func (c *stageChain) copyToSink(pr *io.PipeReader, sink io.Writer) error {
	buf := make([]byte, 32*1024)
	for {
		n, rerr := pr.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				werr = fmt.Errorf("write destination %s: %w", c.dst.Name(), werr)
				_ = pr.CloseWithError(werr)
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// nopWriteCloser adapts the destination file into the sink shape without
// letting the copy loop close it; the pump owns the file's lifetime.
type nopWriteCloser struct{ io.Writer }

// Close implements io.Closer.
func (nopWriteCloser) Close() error { return nil }

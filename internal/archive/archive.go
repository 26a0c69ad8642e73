package archive

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"sync/atomic"
)

// New validates the request and returns a cold Operation. No I/O happens
// until Subscribe is called; every validation failure is returned here,
// synchronously, so local misuse never requires attaching an observer.
func New(source, destination string, opts *Options) (*Operation, error) {
	if source == "" {
		return nil, ErrEmptySourcePath
	}
	if destination == "" {
		return nil, ErrEmptyDestinationPath
	}

	src, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve source path %q: %w", source, err)
	}
	dst, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination path %q: %w", destination, err)
	}
	if src == dst {
		return nil, fmt.Errorf("%w: %s", ErrSamePath, src)
	}

	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Operation{
		source:      src,
		destination: dst,
		opts:        *opts,
		logger:      logger,
		lstat:       os.Lstat,
		mkdirAll:    os.MkdirAll,
		createDst:   defaultCreate,
		done:        make(chan struct{}),
	}, nil
}

// defaultCreate opens the destination for writing, truncating any previous
// content. 0644 matches what os.Create would use before umask.
func defaultCreate(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

// Run packs source into destination and blocks until the operation settles
// or ctx is cancelled. It is the convenience form of New plus Subscribe for
// callers that do not need the push surface. onProgress may be nil.
//
// On cancellation the in-flight operation is aborted and ctx.Err() is
// returned. The returned byte count is the last progress value observed.
func Run(ctx context.Context, source, destination string, opts *Options, onProgress func(ProgressEvent)) (int64, error) {
	op, err := New(source, destination, opts)
	if err != nil {
		return 0, err
	}

	var bytes atomic.Int64
	outcome := make(chan error, 1)
	cancel := op.Subscribe(Observer{
		Next: func(ev ProgressEvent) {
			bytes.Store(ev.Bytes)
			if onProgress != nil {
				onProgress(ev)
			}
		},
		Error:    func(err error) { outcome <- err },
		Complete: func() { outcome <- nil },
	})

	select {
	case err := <-outcome:
		return bytes.Load(), err
	case <-ctx.Done():
		cancel()
		return bytes.Load(), ctx.Err()
	}
}

// fileKind names what a non-regular source actually is, for error messages.
func fileKind(mode fs.FileMode) string {
	switch {
	case mode.IsDir():
		return "directory"
	case mode&fs.ModeSymlink != 0:
		return "symbolic link"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	case mode&fs.ModeDevice != 0:
		return "device"
	default:
		return "irregular file"
	}
}

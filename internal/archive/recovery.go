package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// resolveDestination opens the destination for writing while concurrently
// ensuring its parent directory exists, and reconciles the two outcomes.
//
// The writer is opened immediately so unrelated failures (permissions,
// read-only filesystems) surface fast, but that open races the directory
// creation: it can lose when the parent does not exist yet. The two results
// are joined only after both have settled, and exactly one error ever
// surfaces from this phase:
//
//   - the destination itself is a directory: terminal, no recovery
//   - directory creation failed: terminal, the opened writer is discarded
//   - the first open failed for any other reason: one reopen now that the
//     directory is guaranteed to exist
//
// At most one writer is live past this point; a discarded first writer is
// closed and its error swallowed.
func (op *Operation) resolveDestination(ctx context.Context) (*os.File, error) {
	type openResult struct {
		file *os.File
		err  error
	}
	openCh := make(chan openResult, 1)
	ensureCh := make(chan error, 1)

	go func() {
		f, err := op.createDst(op.destination)
		openCh <- openResult{file: f, err: err}
	}()
	go func() {
		ensureCh <- op.mkdirAll(filepath.Dir(op.destination), 0o755)
	}()

	open := <-openCh
	ensureErr := <-ensureCh

	if err := ctx.Err(); err != nil {
		if open.file != nil {
			_ = open.file.Close()
		}
		return nil, err
	}

	if open.err != nil && op.destinationIsDirectory(open.err) {
		return nil, fmt.Errorf("destination %s is a directory: %w", op.destination, open.err)
	}
	if ensureErr != nil {
		if open.file != nil {
			_ = open.file.Close()
		}
		return nil, fmt.Errorf("create parent directory for %s: %w", op.destination, ensureErr)
	}
	if open.err != nil {
		op.logger.Debug("reopening destination after directory creation",
			"destination", op.destination,
			"cause", open.err,
		)
		f, err := op.createDst(op.destination)
		if err != nil {
			return nil, fmt.Errorf("open destination %s: %w", op.destination, err)
		}
		return f, nil
	}
	return open.file, nil
}

// destinationIsDirectory reports whether the open failure means the
// destination path is itself an existing directory. EISDIR is the direct
// signal; the stat fallback covers platforms that report the condition
// through a different errno.
func (op *Operation) destinationIsDirectory(openErr error) bool {
	if errors.Is(openErr, syscall.EISDIR) {
		return true
	}
	info, err := os.Stat(op.destination)
	return err == nil && info.IsDir()
}

package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// ProgressEvent carries the running byte count for one archive entry.
// The first event for an entry always carries zero bytes, emitted before
// any content is read; subsequent events are monotonically non-decreasing
// and strictly ordered. Events are notifications only and are not retained.
type ProgressEvent struct {
	// Bytes is the number of content bytes processed so far.
	Bytes int64

	// Header is the entry header as written to the archive, after any
	// header rewrite hook has run.
	Header *tar.Header
}

// Observer receives the notifications of one operation. Nil callbacks are
// ignored. Error and Complete are mutually exclusive and each fires at most
// once; neither fires after cancellation.
type Observer struct {
	// Next receives progress events in order.
	Next func(ProgressEvent)

	// Error receives the single terminal failure.
	Error func(error)

	// Complete is invoked once when the archive has fully drained to the
	// destination.
	Complete func()
}

// Operation is a cold, single-subscription archiving operation created by
// New. Subscribe starts it; the returned cancel function aborts it.
//
// Per-operation state machine: validating (in New) → stat'ing → opening
// destination / ensuring directory (concurrent) → piping → completed or
// failed. Cancellation is reachable from the two asynchronous phases and
// collapses outstanding work without a terminal signal.
type Operation struct {
	source      string
	destination string
	opts        Options
	logger      *slog.Logger

	// Filesystem seams, replaced in tests to exercise the destination
	// recovery race deterministically.
	lstat     func(string) (os.FileInfo, error)
	mkdirAll  func(string, os.FileMode) error
	createDst func(string) (*os.File, error)

	subscribed atomic.Bool

	// mu guards the terminal state so that cancellation and settlement
	// cannot interleave: once cancel has returned, no terminal callback
	// will fire.
	mu       sync.Mutex
	canceled bool
	settled  bool
	cancelFn context.CancelFunc

	// done is closed when the operation has settled or been cancelled.
	done chan struct{}
}

// Subscribe attaches the observer and starts the asynchronous phase.
// The returned function cancels the in-flight operation: it synchronously
// begins teardown of every stage, releases the destination file handle,
// and suppresses both terminal callbacks. It is safe to call repeatedly
// and after the operation has settled.
//
// An Operation supports exactly one subscription; subsequent calls deliver
// ErrAlreadySubscribed to the new observer and do not disturb the running
// operation.
func (op *Operation) Subscribe(obs Observer) (cancel func()) {
	if !op.subscribed.CompareAndSwap(false, true) {
		if obs.Error != nil {
			obs.Error(ErrAlreadySubscribed)
		}
		return func() {}
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	op.mu.Lock()
	op.cancelFn = cancelCtx
	op.mu.Unlock()

	go func() {
		op.settle(obs, op.execute(ctx, obs))
	}()

	return op.cancel
}

// cancel aborts the operation. Idempotent; a no-op once settled.
func (op *Operation) cancel() {
	op.mu.Lock()
	if op.canceled {
		op.mu.Unlock()
		return
	}
	op.canceled = true
	fn := op.cancelFn
	op.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// settle delivers the single terminal signal unless the operation was
// cancelled first.
func (op *Operation) settle(obs Observer, err error) {
	op.mu.Lock()
	if op.settled {
		op.mu.Unlock()
		return
	}
	op.settled = true
	canceled := op.canceled
	op.mu.Unlock()

	defer close(op.done)

	if canceled {
		op.logger.Debug("operation cancelled",
			"source", op.source,
			"destination", op.destination,
		)
		return
	}
	if err != nil {
		op.logger.Debug("operation failed",
			"source", op.source,
			"destination", op.destination,
			"error", err,
		)
		if obs.Error != nil {
			obs.Error(err)
		}
		return
	}
	op.logger.Debug("operation completed",
		"source", op.source,
		"destination", op.destination,
	)
	if obs.Complete != nil {
		obs.Complete()
	}
}

// execute runs the stat, destination-resolution, and piping phases.
// It returns the first failure from any phase, or nil once the archive has
// fully drained to the destination.
func (op *Operation) execute(ctx context.Context, obs Observer) error {
	info, err := op.lstat(op.source)
	if err != nil {
		return fmt.Errorf("stat source %s: %w", op.source, err)
	}
	if !info.Mode().IsRegular() {
		return &SourceKindError{Path: op.source, Kind: fileKind(info.Mode())}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := op.resolveDestination(ctx)
	if err != nil {
		return err
	}

	packer := &entryPacker{
		source:        op.source,
		info:          info,
		rewriteHeader: op.opts.RewriteEntryHeader,
		rewriteStream: op.opts.RewriteEntryStream,
		emit: func(ev ProgressEvent) {
			if obs.Next != nil {
				obs.Next(ev)
			}
		},
	}
	chain := &stageChain{
		packer:    packer,
		transform: op.opts.PostPackTransform,
		dst:       dst,
		logger:    op.logger,
	}
	return chain.pump(ctx)
}

// Done reports settlement or cancellation; it is closed in either case.
func (op *Operation) Done() <-chan struct{} { return op.done }

// Destination returns the resolved absolute destination path.
func (op *Operation) Destination() string { return op.destination }

// Source returns the resolved absolute source path.
func (op *Operation) Source() string { return op.source }

// EntryName returns the name the packed entry will carry before any header
// rewrite hook runs.
func (op *Operation) EntryName() string { return filepath.Base(op.source) }

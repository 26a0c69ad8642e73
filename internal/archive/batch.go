package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job describes one source file to pack and the archive path to produce.
type Job struct {
	// Source is the file to pack.
	Source string

	// Destination is the archive path to write.
	Destination string

	// Options configures the operation; nil means defaults.
	Options *Options
}

// Result is the outcome of one batch job. A failed job carries its error
// here; it does not abort the rest of the batch.
type Result struct {
	// Job is the job this result belongs to.
	Job Job

	// Bytes is the number of entry content bytes packed.
	Bytes int64

	// Duration is the wall time the job took.
	Duration time.Duration

	// Err is the job's terminal error, nil on success.
	Err error
}

// BatchPacker packs multiple source files into their own archives
// concurrently, one operation per job, with a bounded number in flight.
type BatchPacker struct {
	concurrency int
	logger      *slog.Logger

	// results is indexed by job position so output order matches input
	// order regardless of completion order.
	results []Result
	mu      sync.Mutex
}

// BatchOption configures a BatchPacker.
type BatchOption func(*BatchPacker)

// WithBatchLogger sets a custom logger for batch packing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchPacker) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of jobs in flight.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchPacker) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchPacker creates a BatchPacker.
func NewBatchPacker(opts ...BatchOption) *BatchPacker {
	bp := &BatchPacker{concurrency: 4}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Pack runs all jobs and returns one result per job, in job order.
// A failing job records its error in its Result and does not stop the
// others; the error return reports cancellation of the batch as a whole.
func (bp *BatchPacker) Pack(ctx context.Context, jobs []Job) ([]Result, error) {
	bp.logger.Info("starting batch pack",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	bp.results = make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("packing",
				"source", job.Source,
				"destination", job.Destination,
				"index", i+1,
				"total", len(jobs),
			)

			jobStart := time.Now()
			bytes, err := Run(ctx, job.Source, job.Destination, job.Options, nil)

			bp.mu.Lock()
			bp.results[i] = Result{
				Job:      job,
				Bytes:    bytes,
				Duration: time.Since(jobStart),
				Err:      err,
			}
			bp.mu.Unlock()

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bp.logger.Warn("pack failed",
					"source", job.Source,
					"error", err,
				)
				// The error lives in the job's Result; the rest of the
				// batch keeps going.
				return nil
			}
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch pack complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(start),
	)
	return bp.results, err
}

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor runs many jobs concurrently through fresh pipelines.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 10 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     10,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch executes every job and returns them in input order.
// A failing job records its error in Job.Err and does not stop the
// others. The returned error is non-nil only when ctx ended.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*Job) ([]*Job, error) {
	bp.logger.Info("starting batch analysis",
		"total_scans", len(jobs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				job.Err = gctx.Err()
				return gctx.Err()
			default:
			}

			bp.logger.Info("analyzing scan",
				"project", job.ProjectID,
				"scan", job.ScanID,
				"index", i+1,
				"total", len(jobs),
			)

			if err := bp.pipelineFactory().Execute(gctx, job); err != nil {
				bp.logger.Warn("analysis failed",
					"project", job.ProjectID,
					"scan", job.ScanID,
					"error", err,
				)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch analysis complete",
		"total_scans", len(jobs),
		"failed", countFailed(jobs),
		"elapsed", time.Since(startTime),
	)

	return jobs, err
}

func countFailed(jobs []*Job) int {
	n := 0
	for _, j := range jobs {
		if j.Err != nil {
			n++
		}
	}
	return n
}

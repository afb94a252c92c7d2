package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of captures graded at once.
const DefaultConcurrency = 10

// BatchProcessor grades many captures concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each job.
	pipelineFactory func() *Pipeline

	// jobFactory creates the job for a capture.
	jobFactory func(capture string) *Job

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many captures are graded at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithJobFactory sets how a job is created for a capture. Each job
// should get its own monitor.
func WithJobFactory(f func(capture string) *Job) BatchOption {
	return func(b *BatchProcessor) {
		if f != nil {
			b.jobFactory = f
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called
// once per job.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		jobFactory: func(capture string) *Job {
			return NewJob(capture, nil)
		},
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch grades the captures and returns their jobs in input order.
// A failed capture is recorded in its job and does not stop the others.
// The error is non-nil only when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, captures []string) ([]*Job, error) {
	jobs := make([]*Job, len(captures))
	err := bp.ProcessBatchWithCallback(ctx, captures, func(job *Job, index int) {
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback grades the captures and calls callback for
// each finished job with its index. callback runs on the worker
// goroutine and may be called concurrently.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	captures []string,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch",
		"captures", len(captures),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, capture := range captures {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := bp.jobFactory(capture)
			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("grading failed", "capture", capture, "error", err)
			} else {
				bp.logger.Debug("graded capture",
					"capture", capture,
					"grade", job.Report.Grade,
				)
			}
			callback(job, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"captures", len(captures),
		"elapsed", time.Since(start),
	)
	return err
}

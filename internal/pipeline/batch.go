package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/codebook/internal/config"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor builds several jobs concurrently. Each job gets a fresh
// pipeline from the factory so step state never leaks between builds.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent builds.
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
		concurrency:     config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch builds every job and returns the builds in job order. A
// failed build keeps its error on Build.Err and does not stop the others;
// the returned error is only set when the context is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []config.Job) ([]*Build, error) {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	builds := make([]*Build, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			build := NewBuild(job)
			builds[i] = build

			bp.logger.Info("building codebook",
				"dataset", build.Dataset(),
				"index", i+1,
				"total", len(jobs),
			)

			if err := bp.pipelineFactory().Execute(ctx, build); err != nil {
				bp.logger.Warn("build failed",
					"dataset", build.Dataset(),
					"error", err,
				)
				return nil
			}

			bp.logger.Info("build completed", "dataset", build.Dataset())
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)
	return builds, err
}

package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/codebook/internal/database"
	"github.com/nao1215/codebook/internal/figure"
	"github.com/nao1215/codebook/internal/publish"
)

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	Logger       *slog.Logger
	FigureLoader *figure.Loader
	Stdout       io.Writer
	Clock        func() time.Time

	// Publisher adds the publish step when set.
	Publisher *publish.Publisher

	// History adds the record step when set.
	History *database.HistoryDB
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineLogger sets the logger used by the steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// WithPipelineFigureLoader sets the loader used for figures.
func WithPipelineFigureLoader(loader *figure.Loader) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FigureLoader = loader
	}
}

// WithPipelineStdout sets where documents without an output path go.
func WithPipelineStdout(w io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Stdout = w
	}
}

// WithPipelineClock sets the time source of document footers.
func WithPipelineClock(now func() time.Time) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Clock = now
	}
}

// WithPipelinePublisher enables publishing.
func WithPipelinePublisher(p *publish.Publisher) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Publisher = p
	}
}

// WithPipelineHistory enables recording in the history database.
func WithPipelineHistory(db *database.HistoryDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.History = db
	}
}

// DefaultPipeline creates a pipeline with the build steps in order:
// load, assemble, render, export, and when configured publish and record.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = p.logger
	}

	renderOpts := make([]RenderStepOption, 0, 2)
	if cfg.Stdout != nil {
		renderOpts = append(renderOpts, WithStdout(cfg.Stdout))
	}
	if cfg.Clock != nil {
		renderOpts = append(renderOpts, WithClock(cfg.Clock))
	}

	p.AddSteps(
		NewLoadStep(cfg.FigureLoader),
		NewAssembleStep(cfg.Logger),
		NewRenderStep(renderOpts...),
		NewExportStep(),
	)
	if cfg.Publisher != nil {
		p.AddStep(NewPublishStep(cfg.Publisher))
	}
	if cfg.History != nil {
		p.AddStep(NewRecordStep(cfg.History, cfg.Logger))
	}
	return p
}

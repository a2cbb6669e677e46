package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/codebook/internal/config"
	"github.com/nao1215/codebook/internal/database"
	"github.com/nao1215/codebook/internal/figure"
	"github.com/nao1215/codebook/internal/pipeline"
	"github.com/nao1215/codebook/internal/publish"
	"github.com/spf13/cobra"
)

// errBuildFailed is returned when at least one build did not complete.
var errBuildFailed = errors.New("build failed")

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a codebook document",
		Long: `Build reads a data table and its metadata and writes a codebook.

Variables whose declarations do not match the data are left out of the
statistics and listed in the appendix; the build itself still succeeds.
Structural problems, such as an empty metadata file or a reference to an
unknown vocabulary, fail the build before anything is written.

Examples:
  # Build a markdown codebook
  codebook build -d survey.csv -m survey.yaml -o survey.md

  # Add an overview, key terms and a figure
  codebook build -d survey.csv -m survey.yaml --overview overview.md \
    --keyterms terms.md --figure "map.png=Sampled counties" -o survey.md

  # Also export the data dictionary as Parquet
  codebook build -d survey.csv -m survey.yaml -o survey.md --parquet survey.parquet

  # Build every codebook declared in .codebook.yaml and publish them
  codebook build --all --publish`,
		Args: cobra.NoArgs,
		RunE: runBuildCmd,
	}

	addInputFlags(cmd)

	cmd.Flags().String("title", "", "Document title (default: dataset name)")
	cmd.Flags().String("overview", "", "Overview narrative (markdown or HTML)")
	cmd.Flags().String("keyterms", "", "Key terms narrative (markdown or HTML)")
	cmd.Flags().StringSlice("figure", nil, `Figure image as "path" or "path=caption"; may be repeated`)

	cmd.Flags().StringP("format", "f", "", "Output format: markdown, text, or json (default: markdown)")
	cmd.Flags().StringP("output", "o", "", "Write the codebook to this file instead of stdout")
	cmd.Flags().String("parquet", "", "Export the data dictionary to this Parquet file")

	cmd.Flags().Int("top-n", 0, fmt.Sprintf("Rows kept in truncated frequency tables (default: %d)", config.DefaultTopN))
	cmd.Flags().Int("threshold", 0,
		fmt.Sprintf("Distinct values above which frequency tables are truncated (default: %d)", config.DefaultCardinalityThreshold))
	cmd.Flags().Uint64("seed", 0, fmt.Sprintf("Seed for text example selection (default: %d)", config.DefaultSeed))

	cmd.Flags().Bool("publish", false, "Publish artifacts to the store configured in the project file")
	cmd.Flags().Bool("no-history", false, "Do not record the build in the history database")
	cmd.Flags().Bool("strict-figures", false, "Fail when a figure carries location or identity metadata")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of codebooks built concurrently with --all")

	return cmd
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runBuild(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from the build command's flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.Job.Title, err = cmd.Flags().GetString("title"); err != nil {
		return nil, err
	}
	if cfg.Job.Overview, err = cmd.Flags().GetString("overview"); err != nil {
		return nil, err
	}
	if cfg.Job.KeyTerms, err = cmd.Flags().GetString("keyterms"); err != nil {
		return nil, err
	}
	figures, err := cmd.Flags().GetStringSlice("figure")
	if err != nil {
		return nil, err
	}
	for i, f := range figures {
		cfg.Job.Figures = append(cfg.Job.Figures, parseFigureFlag(f, i+1))
	}

	if cfg.Job.Format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	if cfg.Job.Output, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Job.Parquet, err = cmd.Flags().GetString("parquet"); err != nil {
		return nil, err
	}
	if cfg.Job.TopN, err = cmd.Flags().GetInt("top-n"); err != nil {
		return nil, err
	}
	if cfg.Job.CardinalityThreshold, err = cmd.Flags().GetInt("threshold"); err != nil {
		return nil, err
	}
	if cfg.Job.Seed, err = cmd.Flags().GetUint64("seed"); err != nil {
		return nil, err
	}

	if cfg.Publish, err = cmd.Flags().GetBool("publish"); err != nil {
		return nil, err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveToDB = false
	}
	if cfg.StrictFigures, err = cmd.Flags().GetBool("strict-figures"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}

	if cfg.All && cfg.Job.Output != "" {
		return nil, errors.New("--output cannot be combined with --all; set output per codebook in the project file")
	}
	return cfg, nil
}

// runBuild builds the selected jobs. Documents without an output path are
// written to stdout; progress and summaries go to stderr.
func runBuild(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	jobs, err := cfg.Jobs()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "path", db.Path())
	}

	var publisher *publish.Publisher
	if cfg.Publish {
		publisher, err = newPublisher(cfg.File.Publish, logger)
		if err != nil {
			return fmt.Errorf("failed to configure publishing: %w", err)
		}
	}

	out := pipeline.NewSyncWriter(stdout)
	factory := func() *pipeline.Pipeline {
		opts := []pipeline.DefaultPipelineOption{
			pipeline.WithPipelineLogger(logger),
			pipeline.WithPipelineStdout(out),
			pipeline.WithPipelineFigureLoader(figure.NewLoader(
				figure.WithLogger(logger),
				figure.WithStrictMetadata(cfg.StrictFigures),
			)),
		}
		if publisher != nil {
			opts = append(opts, pipeline.WithPipelinePublisher(publisher))
		}
		if db != nil {
			opts = append(opts, pipeline.WithPipelineHistory(db))
		}
		return pipeline.DefaultPipeline([]pipeline.Option{pipeline.WithLogger(logger)}, opts...)
	}

	startTime := time.Now()
	var builds []*pipeline.Build
	if len(jobs) == 1 {
		build := pipeline.NewBuild(jobs[0])
		_ = factory().Execute(ctx, build) //nolint:errcheck // The error is kept on the build
		builds = []*pipeline.Build{build}
	} else {
		fmt.Fprintf(stderr, "Building %d codebooks (concurrency: %d)...\n\n", len(jobs), cfg.BatchSize)
		bp := pipeline.NewBatchProcessor(factory,
			pipeline.WithConcurrency(cfg.BatchSize),
			pipeline.WithBatchLogger(logger),
		)
		builds, err = bp.ProcessBatch(ctx, jobs)
		if err != nil {
			return err
		}
	}

	failed := 0
	for _, b := range builds {
		if b == nil {
			continue
		}
		printBuildSummary(stderr, b)
		if b.Failed() {
			failed++
		}
	}
	if len(builds) > 1 {
		fmt.Fprintf(stderr, "\n%d codebooks built in %s\n", len(builds)-failed, time.Since(startTime).Round(time.Millisecond))
	}

	if failed > 0 {
		if len(builds) == 1 {
			return builds[0].Err
		}
		return fmt.Errorf("%w: %d of %d codebooks", errBuildFailed, failed, len(builds))
	}
	return nil
}

// newPublisher creates a publisher for the configured store.
func newPublisher(pc config.PublishConfig, logger *slog.Logger) (*publish.Publisher, error) {
	var store publish.ObjectStore
	if pc.IsLocal() {
		store = publish.NewLocalStore(pc.Dir)
	} else {
		s3, err := publish.NewS3Store(publish.S3Config{
			Endpoint:     pc.Endpoint,
			Bucket:       pc.Bucket,
			Region:       pc.Region,
			AccessKey:    pc.AccessKey,
			SecretKey:    pc.SecretKey,
			UseSSL:       pc.UseSSL,
			CreateBucket: pc.CreateBucket,
		})
		if err != nil {
			return nil, err
		}
		store = s3
	}
	return publish.NewPublisher(store,
		publish.WithPrefix(pc.Prefix),
		publish.WithLogger(logger),
	), nil
}

// printBuildSummary writes one build's outcome.
func printBuildSummary(w io.Writer, b *pipeline.Build) {
	if b.Failed() {
		fmt.Fprintf(w, "[FAILED] %s: %v\n", b.Dataset(), b.Err)
		return
	}
	if b.Result == nil {
		return
	}

	excluded := 0
	for _, e := range b.Result.Entries {
		if e.Excluded() {
			excluded++
		}
	}
	fmt.Fprintf(w, "[OK] %s: %d variables (%d excluded), %d errors, %d warnings\n",
		b.Dataset(),
		len(b.Result.Entries),
		excluded,
		len(b.Result.Report.Errors()),
		len(b.Result.Report.Warnings()),
	)
	for _, loc := range b.Locations {
		fmt.Fprintf(w, "     -> %s\n", loc)
	}
	if c := b.Comparison; c != nil && c.HasChanges() {
		fmt.Fprintf(w, "     since %s: %d new issues, %d resolved\n",
			c.Previous.CreatedAt.Local().Format(time.DateTime), len(c.New), len(c.Resolved))
	}
}

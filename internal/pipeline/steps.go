package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/database"
	"github.com/nao1215/codebook/internal/export"
	"github.com/nao1215/codebook/internal/figure"
	"github.com/nao1215/codebook/internal/publish"
	"github.com/nao1215/codebook/internal/render"
)

// ErrNoResult is returned by steps that need an assembled codebook when
// none exists.
var ErrNoResult = errors.New("no assembled codebook: the assemble step has not run")

// TimestampLayout formats the generation time in document footers.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// LoadStep reads the job's input files.
type LoadStep struct {
	loader *figure.Loader
}

// NewLoadStep creates a load step. loader may be nil.
func NewLoadStep(loader *figure.Loader) *LoadStep {
	return &LoadStep{loader: loader}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads metadata, vocabularies, data, narrative sections and figures.
func (s *LoadStep) Do(_ context.Context, build *Build) error {
	in, err := LoadInputs(build.Job, s.loader)
	if err != nil {
		return err
	}
	build.Input = in
	return nil
}

// AssembleStep builds the codebook from the loaded inputs.
type AssembleStep struct {
	logger *slog.Logger
}

// NewAssembleStep creates an assemble step.
func NewAssembleStep(logger *slog.Logger) *AssembleStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssembleStep{logger: logger}
}

// Name returns the step name.
func (s *AssembleStep) Name() string {
	return "assemble"
}

// Do runs the assembler with the job's policy.
func (s *AssembleStep) Do(_ context.Context, build *Build) error {
	assembler := codebook.NewAssembler(
		codebook.WithPolicy(PolicyFor(build.Job)),
		codebook.WithConcurrency(build.Job.Concurrency),
		codebook.WithLogger(s.logger),
	)
	result, err := assembler.Build(build.Input)
	if err != nil {
		return err
	}
	build.Result = result

	for _, issue := range result.Report.Errors() {
		s.logger.Warn("variable excluded",
			"dataset", build.Dataset(),
			"column", issue.Column,
			"kind", string(issue.Kind),
			"message", issue.Message,
		)
	}
	s.logger.Info("codebook assembled",
		"dataset", build.Dataset(),
		"variables", len(result.Entries),
		"warnings", len(result.Report.Warnings()),
		"digest", result.Digest,
	)
	return nil
}

// RenderStep writes the document in the job's format.
type RenderStep struct {
	stdout io.Writer
	now    func() time.Time
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithStdout sets where documents without an output path are written.
func WithStdout(w io.Writer) RenderStepOption {
	return func(s *RenderStep) {
		s.stdout = w
	}
}

// WithClock sets the time source for the generated footer.
func WithClock(now func() time.Time) RenderStepOption {
	return func(s *RenderStep) {
		s.now = now
	}
}

// NewRenderStep creates a render step.
func NewRenderStep(opts ...RenderStepOption) *RenderStep {
	s := &RenderStep{
		stdout: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// Do renders the document. Output files, including the figures a markdown
// file links next to it, are only written once rendering has succeeded.
func (s *RenderStep) Do(_ context.Context, build *Build) error {
	if build.Result == nil {
		return ErrNoResult
	}
	format, err := render.ParseFormat(build.Job.Format)
	if err != nil {
		return err
	}

	name := "codebook" + format.Extension()
	if build.Job.Output != "" {
		name = filepath.Base(build.Job.Output)
	}

	opts := []render.Option{
		render.WithFooter(Footer(name, s.now())),
		render.WithTableOfContents(true),
	}
	if format == render.FormatJSON {
		opts = append(opts, render.WithPrettyPrint())
	}
	var assets *render.PendingAssets
	if build.Job.Output != "" && format == render.FormatMarkdown {
		assetDir := strings.TrimSuffix(name, filepath.Ext(name)) + "_files"
		assets = render.NewPendingAssets(render.DirAssets{
			Dir:    filepath.Join(filepath.Dir(build.Job.Output), assetDir),
			Prefix: assetDir,
		})
		opts = append(opts, render.WithAssetWriter(assets))
	}

	var buf bytes.Buffer
	r, err := render.New(format, &buf, opts...)
	if err != nil {
		return err
	}
	if err := r.Render(build.Result.Document); err != nil {
		return err
	}
	build.Rendered = buf.Bytes()
	build.addArtifact(name, build.Rendered)

	if build.Job.Output == "" {
		_, err := s.stdout.Write(build.Rendered)
		return err
	}
	if assets != nil {
		if err := assets.Flush(); err != nil {
			return err
		}
	}
	if err := writeFile(build.Job.Output, build.Rendered); err != nil {
		return err
	}
	build.Locations = append(build.Locations, build.Job.Output)
	return nil
}

// Footer returns the footer line of a rendered document.
func Footer(output string, generated time.Time) string {
	return fmt.Sprintf("%s | Generated: %s", output, generated.Format(TimestampLayout))
}

// ExportStep writes the data dictionary as Parquet when the job asks for it.
type ExportStep struct{}

// NewExportStep creates an export step.
func NewExportStep() *ExportStep {
	return &ExportStep{}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do writes the dictionary file. Jobs without a parquet path are skipped.
func (s *ExportStep) Do(_ context.Context, build *Build) error {
	if build.Job.Parquet == "" {
		return nil
	}
	if build.Result == nil {
		return ErrNoResult
	}

	var buf bytes.Buffer
	if _, err := export.WriteParquet(&buf, build.Result.Entries); err != nil {
		return err
	}
	if err := writeFile(build.Job.Parquet, buf.Bytes()); err != nil {
		return err
	}
	build.addArtifact(filepath.Base(build.Job.Parquet), buf.Bytes())
	build.Locations = append(build.Locations, build.Job.Parquet)
	return nil
}

// PublishStep uploads the build's artifacts.
type PublishStep struct {
	publisher *publish.Publisher
}

// NewPublishStep creates a publish step.
func NewPublishStep(publisher *publish.Publisher) *PublishStep {
	return &PublishStep{publisher: publisher}
}

// Name returns the step name.
func (s *PublishStep) Name() string {
	return "publish"
}

// Do publishes every artifact under the dataset and build ID.
func (s *PublishStep) Do(ctx context.Context, build *Build) error {
	locations, err := s.publisher.Publish(ctx, build.Dataset(), build.ID, build.Artifacts)
	build.Locations = append(build.Locations, locations...)
	return err
}

// RecordStep stores the build in the history database and compares it
// with the previous build of the same dataset.
type RecordStep struct {
	db     *database.HistoryDB
	logger *slog.Logger
}

// NewRecordStep creates a record step.
func NewRecordStep(db *database.HistoryDB, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Do records the build.
func (s *RecordStep) Do(ctx context.Context, build *Build) error {
	if build.Result == nil {
		return ErrNoResult
	}

	rec := BuildRecord(build)
	if err := s.db.Record(ctx, rec); err != nil {
		return err
	}

	latest, previous, err := s.db.LatestPair(ctx, build.Dataset())
	if err != nil {
		return err
	}
	if previous == nil || latest == nil || latest.ID != build.ID {
		return nil
	}
	cmp := database.Compare(previous, latest)
	build.Comparison = &cmp
	if cmp.HasChanges() {
		s.logger.Info("data quality changed since previous build",
			"dataset", build.Dataset(),
			"previous", previous.ID,
			"new_issues", len(cmp.New),
			"resolved_issues", len(cmp.Resolved),
		)
	}
	return nil
}

// BuildRecord converts a finished build into a history record.
func BuildRecord(build *Build) *database.BuildRecord {
	res := build.Result
	excluded := 0
	for _, e := range res.Entries {
		if e.Excluded() {
			excluded++
		}
	}
	return &database.BuildRecord{
		ID:           build.ID,
		Dataset:      build.Dataset(),
		Title:        res.Document.Title,
		CreatedAt:    build.StartedAt,
		Digest:       res.Digest,
		Format:       build.Job.Format,
		Variables:    len(res.Entries),
		Excluded:     excluded,
		ErrorCount:   len(res.Report.Errors()),
		WarningCount: len(res.Report.Warnings()),
		Issues:       res.Report.Issues(),
		Artifacts:    build.Locations,
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

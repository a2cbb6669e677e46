package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/codebook/internal/config"
	"github.com/nao1215/codebook/internal/pipeline"
	"github.com/nao1215/codebook/internal/render"
	"github.com/nao1215/codebook/internal/validate"
	"github.com/nao1215/codebook/internal/vocab"
	"github.com/spf13/cobra"
)

// errValidationFailed is returned when the data violates its metadata.
var errValidationFailed = errors.New("validation failed")

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a data table against its metadata",
		Long: `Validate checks a data table against its metadata without building a
document. It reports declared columns missing from the data, undeclared
columns, values that do not parse as the declared type, values outside the
declared codes or ranges, and repeated identifiers.

The command exits with an error when any error-level issue is found, so it
can gate a data release in CI.

Examples:
  # Validate a data file
  codebook validate -d survey.csv -m survey.yaml

  # Machine-readable output
  codebook validate -d survey.csv -m survey.yaml --json

  # Validate every codebook in the project file
  codebook validate --all`,
		Args: cobra.NoArgs,
		RunE: runValidateCmd,
	}

	addInputFlags(cmd)
	cmd.Flags().BoolP("json", "j", false, "Output the report as JSON")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	jobs, err := cfg.Jobs()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	failed := 0
	for _, job := range jobs {
		if len(jobs) > 1 && !jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", job.DatasetName())
		}
		report, err := validateJob(job)
		if err != nil {
			return fmt.Errorf("%s: %w", job.DatasetName(), err)
		}
		if err := writeReport(cmd.OutOrStdout(), report, jsonOutput); err != nil {
			return err
		}
		if report.HasErrors() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d datasets have errors", errValidationFailed, failed, len(jobs))
	}
	return nil
}

// validateJob loads a job's inputs and checks the data against the
// metadata. Narrative files and figures are not read. Structural problems
// are returned as errors.
func validateJob(job config.Job) (*validate.Report, error) {
	job.Overview, job.KeyTerms, job.Figures = "", "", nil
	in, err := pipeline.LoadInputs(job, nil)
	if err != nil {
		return nil, err
	}
	if err := vocab.NewResolver(in.Vocabularies).Check(in.Metadata); err != nil {
		return nil, err
	}
	return validate.Validate(in.Metadata, in.Table, validate.Options{
		DateLayouts:  pipeline.PolicyFor(job).Stats.DateLayouts,
		Vocabularies: in.Vocabularies,
	}), nil
}

func writeReport(w io.Writer, report *validate.Report, jsonOutput bool) error {
	if jsonOutput {
		return render.WriteIssuesJSON(w, report, true)
	}
	return render.WriteIssuesText(w, report)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nao1215/codebook/internal/database"
	"github.com/nao1215/codebook/internal/validate"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// noIssuesMessage is shown for empty issue lists.
const noIssuesMessage = "No issues"

// errNotEnoughBuilds is returned when a comparison needs two builds.
var errNotEnoughBuilds = errors.New("at least two builds are needed for a comparison")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [dataset]",
		Short: "Show recorded builds and compare data quality between them",
		Long: `History shows the builds recorded in the history database.

Without arguments it lists every dataset with recorded builds. With a
dataset it lists the dataset's builds, newest first. --compare shows which
data quality issues are new and which were resolved between two builds.

Examples:
  # List datasets
  codebook history

  # List the builds of a dataset
  codebook history survey

  # Compare the two latest builds
  codebook history survey --compare

  # Compare the latest build with a specific earlier build
  codebook history survey --compare --with 0b8f3c2e-...

  # Markdown output for a release note
  codebook history survey --compare --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of builds to list (0 for all)")
	cmd.Flags().Bool("compare", false, "Compare the latest build with an earlier one")
	cmd.Flags().String("with", "", "Build ID to compare against (default: the previous build)")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output the comparison in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetString("with")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}
	if (compare || withID != "") && len(args) == 0 {
		return errors.New("dataset is required for a comparison (run 'codebook history' to list datasets)")
	}

	cfg, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	w := cmd.OutOrStdout()

	switch {
	case len(args) == 0:
		return listDatasets(ctx, w, db, jsonOutput)
	case compare || withID != "":
		c, err := compareBuilds(ctx, db, args[0], withID)
		if err != nil {
			return err
		}
		switch {
		case jsonOutput:
			return writeJSON(w, comparisonOutput(c))
		case markdownOutput:
			return writeComparisonMarkdown(w, args[0], c)
		default:
			writeComparisonText(w, args[0], c)
			return nil
		}
	default:
		return listBuilds(ctx, w, db, args[0], limit, jsonOutput)
	}
}

func listDatasets(ctx context.Context, w io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	datasets, err := db.ListDatasets(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		if datasets == nil {
			datasets = []string{}
		}
		return writeJSON(w, datasets)
	}
	if len(datasets) == 0 {
		fmt.Fprintln(w, "No builds recorded yet. Run 'codebook build' first.")
		return nil
	}
	fmt.Fprintf(w, "Datasets (%d):\n", len(datasets))
	for _, d := range datasets {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return nil
}

// buildOutput is the JSON form of a build record.
type buildOutput struct {
	ID           string    `json:"id"`
	Dataset      string    `json:"dataset"`
	Title        string    `json:"title,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Digest       string    `json:"digest"`
	Format       string    `json:"format,omitempty"`
	Variables    int       `json:"variables"`
	Excluded     int       `json:"excluded"`
	ErrorCount   int       `json:"errors"`
	WarningCount int       `json:"warnings"`
	Artifacts    []string  `json:"artifacts,omitempty"`
}

func newBuildOutput(r *database.BuildRecord) buildOutput {
	return buildOutput{
		ID:           r.ID,
		Dataset:      r.Dataset,
		Title:        r.Title,
		CreatedAt:    r.CreatedAt,
		Digest:       r.Digest,
		Format:       r.Format,
		Variables:    r.Variables,
		Excluded:     r.Excluded,
		ErrorCount:   r.ErrorCount,
		WarningCount: r.WarningCount,
		Artifacts:    r.Artifacts,
	}
}

func listBuilds(ctx context.Context, w io.Writer, db *database.HistoryDB, dataset string, limit int, jsonOutput bool) error {
	records, err := db.ListBuilds(ctx, dataset, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		out := make([]buildOutput, 0, len(records))
		for _, r := range records {
			out = append(out, newBuildOutput(r))
		}
		return writeJSON(w, out)
	}
	if len(records) == 0 {
		fmt.Fprintf(w, "No builds recorded for %s\n", dataset)
		return nil
	}

	fmt.Fprintf(w, "Builds of %s (%d):\n\n", dataset, len(records))
	fmt.Fprintf(w, "  %-36s  %-19s  %-12s  %5s  %6s  %8s\n", "ID", "CREATED", "DIGEST", "VARS", "ERRORS", "WARNINGS")
	for _, r := range records {
		fmt.Fprintf(w, "  %-36s  %-19s  %-12s  %5d  %6d  %8d\n",
			r.ID,
			r.CreatedAt.Local().Format(time.DateTime),
			shortDigest(r.Digest),
			r.Variables,
			r.ErrorCount,
			r.WarningCount,
		)
	}
	return nil
}

// compareBuilds compares the latest build of dataset with the build
// identified by withID, or with the build before it.
func compareBuilds(ctx context.Context, db *database.HistoryDB, dataset, withID string) (database.Comparison, error) {
	latest, previous, err := db.LatestPair(ctx, dataset)
	if err != nil {
		return database.Comparison{}, err
	}
	if latest == nil {
		return database.Comparison{}, fmt.Errorf("no builds recorded for %s", dataset)
	}

	if withID != "" {
		previous, err = db.GetBuild(ctx, withID)
		if err != nil {
			return database.Comparison{}, err
		}
		if previous == nil || previous.Dataset != dataset {
			return database.Comparison{}, fmt.Errorf("build %s not found for %s", withID, dataset)
		}
	}
	if previous == nil || previous.ID == latest.ID {
		return database.Comparison{}, errNotEnoughBuilds
	}
	return database.Compare(previous, latest), nil
}

// comparisonJSON is the JSON form of a comparison.
type comparisonJSON struct {
	Previous      buildOutput      `json:"previous"`
	Current       buildOutput      `json:"current"`
	New           []validate.Issue `json:"new"`
	Resolved      []validate.Issue `json:"resolved"`
	Unchanged     int              `json:"unchanged"`
	DigestChanged bool             `json:"digest_changed"`
}

func comparisonOutput(c database.Comparison) comparisonJSON {
	out := comparisonJSON{
		Previous:      newBuildOutput(c.Previous),
		Current:       newBuildOutput(c.Current),
		New:           c.New,
		Resolved:      c.Resolved,
		Unchanged:     c.Unchanged,
		DigestChanged: c.DigestChanged,
	}
	if out.New == nil {
		out.New = []validate.Issue{}
	}
	if out.Resolved == nil {
		out.Resolved = []validate.Issue{}
	}
	return out
}

func writeComparisonText(w io.Writer, dataset string, c database.Comparison) {
	fmt.Fprintf(w, "Comparison for %s\n", dataset)
	fmt.Fprintf(w, "  previous: %s (%s)\n", c.Previous.ID, c.Previous.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "  current:  %s (%s)\n\n", c.Current.ID, c.Current.CreatedAt.Local().Format(time.DateTime))

	if c.DigestChanged {
		fmt.Fprintln(w, "Document content changed.")
	} else {
		fmt.Fprintln(w, "Document content unchanged.")
	}
	fmt.Fprintf(w, "Errors:   %d -> %d\n", c.Previous.ErrorCount, c.Current.ErrorCount)
	fmt.Fprintf(w, "Warnings: %d -> %d\n\n", c.Previous.WarningCount, c.Current.WarningCount)

	fmt.Fprintf(w, "New issues (%d):\n", len(c.New))
	writeIssueLines(w, c.New)
	fmt.Fprintf(w, "\nResolved issues (%d):\n", len(c.Resolved))
	writeIssueLines(w, c.Resolved)
	fmt.Fprintf(w, "\nUnchanged issues: %d\n", c.Unchanged)
}

func writeIssueLines(w io.Writer, issues []validate.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(w, "  %s\n", noIssuesMessage)
		return
	}
	for _, is := range issues {
		fmt.Fprintf(w, "  %s\n", is.String())
	}
}

func writeComparisonMarkdown(w io.Writer, dataset string, c database.Comparison) error {
	md := markdown.NewMarkdown(w)
	md.H1(fmt.Sprintf("Data quality changes: %s", dataset))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current"},
		Rows: [][]string{
			{"Build", c.Previous.ID, c.Current.ID},
			{"Created", c.Previous.CreatedAt.Format(time.DateTime), c.Current.CreatedAt.Format(time.DateTime)},
			{"Digest", shortDigest(c.Previous.Digest), shortDigest(c.Current.Digest)},
			{"Errors", fmt.Sprint(c.Previous.ErrorCount), fmt.Sprint(c.Current.ErrorCount)},
			{"Warnings", fmt.Sprint(c.Previous.WarningCount), fmt.Sprint(c.Current.WarningCount)},
		},
	})
	md.PlainText("")

	for _, section := range []struct {
		title  string
		issues []validate.Issue
	}{
		{"New issues", c.New},
		{"Resolved issues", c.Resolved},
	} {
		md.H2(section.title)
		md.PlainText("")
		if len(section.issues) == 0 {
			md.PlainText(noIssuesMessage)
			md.PlainText("")
			continue
		}
		rows := make([][]string, 0, len(section.issues))
		for _, is := range section.issues {
			rows = append(rows, []string{
				string(is.Severity),
				is.Kind.String(),
				is.Column,
				is.Value,
				strings.ReplaceAll(is.Message, "|", `\|`),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Kind", "Column", "Value", "Message"},
			Rows:   rows,
		})
		md.PlainText("")
	}
	return md.Build()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func shortDigest(d string) string {
	return d[:min(len(d), 12)]
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/codebook/internal/validate"
)

// issuesJSON is the JSON form of a validation report.
type issuesJSON struct {
	Errors   int              `json:"errors"`
	Warnings int              `json:"warnings"`
	Issues   []validate.Issue `json:"issues"`
}

// WriteIssuesJSON writes a validation report as JSON.
func WriteIssuesJSON(w io.Writer, report *validate.Report, pretty bool) error {
	indent := ""
	if pretty {
		indent = "  "
	}
	issues := report.Issues()
	if issues == nil {
		issues = []validate.Issue{}
	}
	return writeJSON(w, issuesJSON{
		Errors:   len(report.Errors()),
		Warnings: len(report.Warnings()),
		Issues:   issues,
	}, indent)
}

// WriteIssuesText writes a validation report for terminal display.
func WriteIssuesText(w io.Writer, report *validate.Report) error {
	var sb strings.Builder

	errs, warns := report.Errors(), report.Warnings()
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VALIDATION REPORT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  ERRORS:   %d\n", len(errs)))
	sb.WriteString(fmt.Sprintf("  WARNINGS: %d\n\n", len(warns)))

	if report.Len() == 0 {
		sb.WriteString("  Metadata matches the data table.\n")
	}
	for _, is := range report.Issues() {
		indicator := "-"
		if is.IsError() {
			indicator = "!"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", indicator, is.Kind, is.Column))
		if is.Value != "" {
			sb.WriteString(fmt.Sprintf("      Value: %q (%d rows)\n", is.Value, is.Count))
		}
		sb.WriteString(fmt.Sprintf("      %s\n", is.Message))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

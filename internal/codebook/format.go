package codebook

import (
	"strconv"
	"time"

	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const undefined = "undefined"

// formatter turns numbers into the display strings used in tables.
// It is not safe for concurrent use.
type formatter struct {
	printer *message.Printer
	title   cases.Caser
}

func newFormatter() *formatter {
	return &formatter{
		printer: message.NewPrinter(language.English),
		title:   cases.Title(language.English),
	}
}

// count formats an integer with thousands separators.
func (f *formatter) count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// number formats a float with thousands separators and two decimals.
func (f *formatter) number(x float64) string {
	return f.printer.Sprintf("%.2f", x)
}

// percent formats part/whole with two decimals.
func (f *formatter) percent(part, whole int) string {
	if whole == 0 {
		return "0.00%"
	}
	return f.printer.Sprintf("%.2f%%", float64(part)*100/float64(whole))
}

func (f *formatter) plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return f.count(n) + " " + noun + "s"
}

func (f *formatter) typeName(t model.DeclaredType) string {
	return f.title.String(t.String())
}

func formatDate(t time.Time) string {
	return model.Date(t).Text()
}

// statisticsRows builds the two-column characteristic table of an entry.
func (f *formatter) statisticsRows(e Entry) [][]string {
	s := e.Summary
	rows := [][]string{
		{"Variable type", f.typeName(e.Spec.Type)},
		{"Total cases", f.count(s.NTotal)},
		{"Valid cases", f.count(s.NValid)},
		{"Missing cases", f.count(s.NMissing)},
	}
	if s.NInvalid > 0 {
		rows = append(rows, []string{"Unparseable cases", f.count(s.NInvalid)})
	}
	if e.Spec.MeasureUnit != "" {
		rows = append(rows, []string{"Unit of measure", e.Spec.MeasureUnit})
	}
	if e.Spec.AnalysisUnit != "" {
		rows = append(rows, []string{"Unit of analysis", e.Spec.AnalysisUnit})
	}

	switch {
	case s.Numeric != nil:
		rows = append(rows, f.numericRows(s.Numeric)...)
	case s.Date != nil:
		rows = append(rows, dateRows(s.Date)...)
	case s.Text != nil:
		rows = append(rows, f.textRows(s.Text)...)
	case s.Frequencies != nil:
		rows = append(rows, []string{"Distinct values", f.count(len(s.Frequencies))})
	}
	return rows
}

func (f *formatter) numericRows(n *stats.NumericSummary) [][]string {
	if !n.Defined {
		return [][]string{
			{"Range", undefined},
			{"Mean", undefined},
			{"Median", undefined},
		}
	}
	rows := [][]string{
		{"Range", "minimum value: " + f.number(n.Min) + " to maximum value: " + f.number(n.Max)},
		{"Mean", f.number(n.Mean)},
		{"Median", f.number(n.Median)},
		{"Standard deviation", f.number(n.StdDev)},
	}
	for _, p := range n.Percentiles {
		rows = append(rows, []string{ordinal(p.P) + " percentile", f.number(p.Value)})
	}
	return rows
}

func dateRows(d *stats.DateSummary) [][]string {
	if !d.Defined {
		return [][]string{{"Range", undefined}}
	}
	return [][]string{
		{"Range", "earliest: " + formatDate(d.Min) + " to latest: " + formatDate(d.Max)},
	}
}

func (f *formatter) textRows(t *stats.TextSummary) [][]string {
	rows := [][]string{
		{"Unique values", f.count(t.NUnique)},
		{"Minimum length", f.count(t.MinLength)},
		{"Maximum length", f.count(t.MaxLength)},
	}
	for i, ex := range t.Examples {
		rows = append(rows, []string{f.printer.Sprintf("Example %d", i+1), ex})
	}
	return rows
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

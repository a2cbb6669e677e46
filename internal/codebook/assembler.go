package codebook

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/nao1215/codebook/internal/layout"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
	"github.com/nao1215/codebook/internal/validate"
	"github.com/nao1215/codebook/internal/vocab"
	"golang.org/x/sync/errgroup"
)

// Section titles used in the document.
const (
	DefaultOverviewTitle = "Project Overview"
	DefaultKeyTermsTitle = "Key Terms"
	DataDictionaryTitle  = "Data Dictionary"
	FiguresTitle         = "Figures"
	AppendixTitle        = "Data Quality Notes"
)

// Assembler builds codebook documents.
type Assembler struct {
	policy      Policy
	logger      *slog.Logger
	concurrency int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithPolicy replaces the default presentation policy.
func WithPolicy(p Policy) Option {
	return func(a *Assembler) {
		a.policy = p
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithConcurrency bounds how many columns are summarized at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		policy:      DefaultPolicy(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Build validates the input, summarizes every declared column, and lays
// out the document.
//
// Structural problems (no declared columns, no table columns, a malformed
// spec, an unknown vocabulary) fail with a *model.ConfigurationError before
// any computation, and no document is returned. Data problems never fail
// the build: errors replace the column's entry with a placeholder and all
// issues are listed in the appendix.
func (a *Assembler) Build(in Input) (*Result, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	resolver := vocab.NewResolver(in.Vocabularies)
	if err := resolver.Check(in.Metadata); err != nil {
		return nil, err
	}

	report := validate.Validate(in.Metadata, in.Table, validate.Options{
		DateLayouts:  a.policy.Stats.DateLayouts,
		Vocabularies: in.Vocabularies,
	})
	a.logger.Debug("metadata validated",
		"columns", in.Metadata.Len(),
		"errors", len(report.Errors()),
		"warnings", len(report.Warnings()),
	)

	entries, err := a.entries(in, report, resolver)
	if err != nil {
		return nil, err
	}

	doc, phases, err := a.layout(in, report, entries)
	if err != nil {
		return nil, err
	}
	digest, err := doc.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to digest document: %w", err)
	}

	a.logger.Debug("codebook assembled",
		"title", doc.Title,
		"instructions", doc.Len(),
		"digest", digest,
	)

	return &Result{
		Document: doc,
		Report:   report,
		Entries:  entries,
		Digest:   digest,
		Phases:   phases,
	}, nil
}

func checkInput(in Input) error {
	if in.Metadata.Len() == 0 {
		return model.NewConfigurationError("no column specs supplied", model.ErrEmptyMetadata)
	}
	if in.Table.NumColumns() == 0 {
		return model.NewConfigurationError("data table has zero columns", model.ErrEmptyTable)
	}
	for _, spec := range in.Metadata.Specs() {
		if err := spec.Check(); err != nil {
			return err
		}
	}
	return nil
}

// entries builds one Entry per declared column. Each column is an
// independent computation; results land at the column's index.
func (a *Assembler) entries(in Input, report *validate.Report, resolver *vocab.Resolver) ([]Entry, error) {
	specs := in.Metadata.Specs()
	out := make([]Entry, len(specs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			entry, err := buildEntry(spec, in.Table, report, resolver, a.policy.Stats)
			if err != nil {
				return err
			}
			out[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildEntry runs the per-column pipeline: summarize, then resolve labels.
func buildEntry(spec model.ColumnSpec, table *model.Table, report *validate.Report, resolver *vocab.Resolver, opts stats.Options) (Entry, error) {
	entry := Entry{Spec: spec}
	if issue, excluded := report.Excluded(spec.Name); excluded {
		entry.Exclusion = &issue
		return entry, nil
	}
	values, _ := table.Column(spec.Name)
	entry.Summary = stats.Summarize(values, spec, opts)
	if spec.Type == model.TypeCategorical {
		res, err := resolver.Resolve(entry.Summary, spec)
		if err != nil {
			return Entry{}, err
		}
		entry.Resolution = res
	}
	return entry, nil
}

// layout walks the phases in order and returns the finished document.
// Instructions accumulate in a private builder, so a failure returns
// nothing.
func (a *Assembler) layout(in Input, report *validate.Report, entries []Entry) (*layout.Document, []Phase, error) {
	b := layout.NewBuilder(in.Title)
	m := &phaseMachine{}
	f := newFormatter()

	steps := []struct {
		phase Phase
		emit  func()
	}{
		{PhaseFrontMatter, func() { emitNarrative(b, in.Overview, DefaultOverviewTitle) }},
		{PhaseKeyTerms, func() { emitNarrative(b, in.KeyTerms, DefaultKeyTermsTitle) }},
		{PhaseDataDictionary, func() {
			if a.policy.DataDictionary {
				emitDictionary(b, f, in.Metadata.Specs())
			}
		}},
		{PhaseVariables, func() {
			for _, e := range entries {
				a.emitEntry(b, f, e)
			}
		}},
		{PhaseFigures, func() { emitFigures(b, in.Figures) }},
		{PhaseAppendix, func() { emitAppendix(b, f, report) }},
	}

	for _, s := range steps {
		if err := m.advance(s.phase); err != nil {
			return nil, nil, err
		}
		before := b.Len()
		s.emit()
		a.logger.Debug("phase complete", "phase", s.phase.String(), "instructions", b.Len()-before)
	}
	if err := m.advance(PhaseDone); err != nil {
		return nil, nil, err
	}
	return b.Document(), m.visited, nil
}

func emitNarrative(b *layout.Builder, n *Narrative, defaultTitle string) {
	if n.IsEmpty() {
		return
	}
	title := n.Title
	if title == "" {
		title = defaultTitle
	}
	b.Heading(title, 1)
	for _, blk := range n.Blocks {
		if blk.Heading != "" {
			b.Heading(blk.Heading, min(max(blk.Level, 1)+1, 6))
		}
		b.Paragraph(blk.Text)
	}
	b.PageBreak()
}

func emitDictionary(b *layout.Builder, f *formatter, specs []model.ColumnSpec) {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		length := ""
		if s.Length > 0 {
			length = f.count(s.Length)
		}
		categorical := "No"
		if s.Type == model.TypeCategorical {
			categorical = "Yes"
		}
		rows = append(rows, []string{s.Name, f.typeName(s.Type), length, categorical, s.Label})
	}
	b.Heading(DataDictionaryTitle, 1)
	b.Table(layout.Table{
		Title:   DataDictionaryTitle,
		Headers: []string{"Variable Name", "Data Type", "Length", "Categorical", "Variable Label"},
		Rows:    rows,
		Role:    layout.RoleDictionary,
	})
	b.PageBreak()
}

func (a *Assembler) emitEntry(b *layout.Builder, f *formatter, e Entry) {
	title := e.Spec.Name
	if e.Spec.Label != "" {
		title += ": " + e.Spec.Label
	}
	b.Heading(title, 2)

	if e.Excluded() {
		b.Paragraph(fmt.Sprintf("Excluded from this codebook (%s): %s.", e.Exclusion.Kind, e.Exclusion.Message))
	} else {
		b.Table(layout.Table{
			Title:   e.Spec.Name + " summary",
			Headers: []string{"Variable characteristic", "Variable details"},
			Rows:    f.statisticsRows(e),
			Role:    layout.RoleStatistics,
		})
		if desc := validValuesLine(e.Spec); desc != "" {
			b.Paragraph(desc)
		}
		if e.Spec.Type == model.TypeCategorical {
			b.Table(a.frequencyTable(f, e))
		}
	}

	if e.Spec.Notes != "" {
		b.Paragraph("Notes: " + e.Spec.Notes)
	}
	if a.policy.PageBreakPerVariable {
		b.PageBreak()
	}
}

func validValuesLine(spec model.ColumnSpec) string {
	var line string
	if spec.ValidValues != nil {
		line = "Valid values: " + spec.ValidValues.Describe() + "."
	}
	if spec.VocabularyRef != "" {
		if line != "" {
			line += " "
		}
		line += "Labels from vocabulary " + spec.VocabularyRef + "."
	}
	return line
}

// frequencyTable renders the code/label/count/percent rows of a categorical
// entry, cut to the top N plus an aggregate row when the variable has too
// many distinct values.
func (a *Assembler) frequencyTable(f *formatter, e Entry) layout.Table {
	freqs := e.Summary.Frequencies
	valid := e.Summary.NValid
	truncated := a.policy.truncates(len(freqs))

	shown := freqs
	if truncated {
		shown = freqs[:min(a.policy.TopN, len(freqs))]
	}

	rows := make([][]string, 0, len(shown)+len(e.Resolution.Unobserved)+1)
	chart := make([]layout.Slice, 0, len(shown)+1)
	for _, fr := range shown {
		label := vocab.Label{Code: fr.Value, Text: fr.Value, Mapped: true}
		if l, ok := e.Resolution.Lookup(fr.Value); ok {
			label = l
		}
		rows = append(rows, []string{fr.Value, label.Display(), f.count(fr.Count), f.percent(fr.Count, valid)})
		chart = append(chart, layout.Slice{Label: label.Text, Value: uint64(fr.Count)})
	}

	if truncated {
		rest := 0
		for _, fr := range freqs[len(shown):] {
			rest += fr.Count
		}
		label := fmt.Sprintf("%d other values", len(freqs)-len(shown))
		rows = append(rows, []string{a.policy.OtherLabel, label, f.count(rest), f.percent(rest, valid)})
		chart = append(chart, layout.Slice{Label: a.policy.OtherLabel, Value: uint64(rest)})
	} else {
		for _, l := range e.Resolution.Unobserved {
			rows = append(rows, []string{l.Code, l.Display(), f.count(0), f.percent(0, valid)})
		}
	}

	return layout.Table{
		Title:   e.Spec.Name + " frequencies",
		Headers: []string{"Code", "Label", "Count", "Percent"},
		Rows:    rows,
		Role:    layout.RoleFrequency,
		Chart:   chart,
	}
}

func emitFigures(b *layout.Builder, figures []Figure) {
	if len(figures) == 0 {
		return
	}
	ordered := make([]Figure, len(figures))
	copy(ordered, figures)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	b.Heading(FiguresTitle, 1)
	for i, fig := range ordered {
		if i > 0 {
			b.PageBreak()
		}
		b.Image(layout.Image{Data: fig.Data, Caption: fig.Caption, Format: fig.Format})
	}
	b.PageBreak()
}

func emitAppendix(b *layout.Builder, f *formatter, report *validate.Report) {
	issues := report.Issues()
	if len(issues) == 0 {
		return
	}
	b.Heading(AppendixTitle, 1)
	b.Paragraph(fmt.Sprintf("Validation found %s and %s. Excluded variables appear as placeholders above.",
		f.plural(len(report.Errors()), "error"), f.plural(len(report.Warnings()), "warning")))

	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		count := ""
		if is.Count > 0 {
			count = f.count(is.Count)
		}
		rows = append(rows, []string{string(is.Severity), is.Kind.String(), is.Column, is.Value, count, is.Message})
	}
	b.Table(layout.Table{
		Title:   AppendixTitle,
		Headers: []string{"Severity", "Kind", "Column", "Value", "Count", "Message"},
		Rows:    rows,
		Role:    layout.RoleIssues,
	})
}

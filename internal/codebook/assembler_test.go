package codebook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/codebook/internal/layout"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/validate"
)

func quietAssembler(opts ...Option) *Assembler {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewAssembler(opts...)
}

func mustMetadata(t *testing.T, specs ...model.ColumnSpec) *model.MetadataModel {
	t.Helper()
	m, err := model.NewMetadataModel(specs...)
	if err != nil {
		t.Fatalf("failed to build metadata: %v", err)
	}
	return m
}

func mustTable(t *testing.T, columns ...model.Column) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(columns...)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return tbl
}

func sampleInput(t *testing.T) Input {
	t.Helper()
	return Input{
		Title: "Household Survey",
		Metadata: mustMetadata(t,
			model.ColumnSpec{Name: "county", Type: model.TypeCategorical, Label: "County code",
				ValidValues: model.CodeSet{{Value: "A", Label: "Adams"}, {Value: "B", Label: "Brown"}}},
			model.ColumnSpec{Name: "age", Type: model.TypeContinuous, Label: "Age in years", MeasureUnit: "Years"},
			model.ColumnSpec{Name: "income", Type: model.TypeContinuous, Label: "Household income"},
			model.ColumnSpec{Name: "visit", Type: model.TypeDate, Label: "Visit date"},
			model.ColumnSpec{Name: "hhid", Type: model.TypeIdentifier, Label: "Household ID", Notes: "Assigned at intake."},
		),
		Table: mustTable(t,
			model.Column{Name: "hhid", Values: model.Strings("h1", "h2", "h3", "h4")},
			model.Column{Name: "county", Values: model.Strings("A", "A", "B", "C")},
			model.Column{Name: "age", Values: model.Strings("10", "20", "", "30")},
			model.Column{Name: "visit", Values: model.Strings("2024-01-01", "2024-02-01", "", "2024-03-01")},
			model.Column{Name: "weight", Values: model.Strings("1", "1", "1", "1")},
		),
		Overview: &Narrative{Blocks: []Block{{Text: "A survey of households."}}},
		KeyTerms: &Narrative{Title: "Glossary", Blocks: []Block{{Heading: "Household", Level: 1, Text: "People sharing a dwelling."}}},
		Figures: []Figure{
			{Data: []byte("second"), Caption: "Map", Format: "png", Order: 2},
			{Data: []byte("first"), Caption: "Chart", Format: "png", Order: 1},
		},
	}
}

func headings(doc *layout.Document) []string {
	var out []string
	for _, h := range doc.Headings(6) {
		out = append(out, h.Text)
	}
	return out
}

func paragraphs(doc *layout.Document) []string {
	var out []string
	for _, ins := range doc.Instructions {
		if p, ok := ins.(layout.Paragraph); ok {
			out = append(out, p.Text)
		}
	}
	return out
}

func tableByTitle(doc *layout.Document, title string) (layout.Table, bool) {
	for _, ins := range doc.Instructions {
		if tbl, ok := ins.(layout.Table); ok && tbl.Title == title {
			return tbl, true
		}
	}
	return layout.Table{}, false
}

func TestBuildSectionOrder(t *testing.T) {
	t.Parallel()

	res, err := quietAssembler().Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"Project Overview",
		"Glossary",
		"Household",
		"Data Dictionary",
		"county: County code",
		"age: Age in years",
		"income: Household income",
		"visit: Visit date",
		"hhid: Household ID",
		"Figures",
		"Data Quality Notes",
	}
	if got := headings(res.Document); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected headings\n%v\ngot\n%v", expected, got)
	}

	expectedPhases := []Phase{PhaseFrontMatter, PhaseKeyTerms, PhaseDataDictionary, PhaseVariables, PhaseFigures, PhaseAppendix, PhaseDone}
	if !reflect.DeepEqual(res.Phases, expectedPhases) {
		t.Errorf("expected phases %v, got %v", expectedPhases, res.Phases)
	}
}

func TestBuildFlagsUnmappedCode(t *testing.T) {
	t.Parallel()

	res, err := quietAssembler().Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tbl, ok := tableByTitle(res.Document, "county frequencies")
	if !ok {
		t.Fatal("frequency table for county not found")
	}
	expected := [][]string{
		{"A", "Adams", "2", "50.00%"},
		{"B", "Brown", "1", "25.00%"},
		{"C", "C (unmapped)", "1", "25.00%"},
	}
	if !reflect.DeepEqual(tbl.Rows, expected) {
		t.Errorf("expected rows %v, got %v", expected, tbl.Rows)
	}

	oov := res.Report.ByKind(validate.KindOutOfVocabulary)
	if len(oov) != 1 || oov[0].Value != "C" || oov[0].Count != 1 {
		t.Errorf("expected one OutOfVocabulary issue for C, got %v", oov)
	}
}

func TestBuildMissingColumnPlaceholder(t *testing.T) {
	t.Parallel()

	res, err := quietAssembler().Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	is, ok := res.Report.Excluded("income")
	if !ok || is.Kind != validate.KindMissingInData {
		t.Fatalf("expected income excluded as MissingInData, got %+v", is)
	}
	if _, ok := tableByTitle(res.Document, "income summary"); ok {
		t.Error("an excluded column must not render statistics")
	}

	var placeholder bool
	for _, p := range paragraphs(res.Document) {
		if strings.HasPrefix(p, "Excluded from this codebook (MissingInData)") {
			placeholder = true
		}
	}
	if !placeholder {
		t.Error("placeholder paragraph for income not found")
	}

	appendix, ok := tableByTitle(res.Document, AppendixTitle)
	if !ok {
		t.Fatal("appendix table not found")
	}
	var listed bool
	for _, row := range appendix.Rows {
		if row[1] == "MissingInData" && row[2] == "income" {
			listed = true
		}
	}
	if !listed {
		t.Errorf("appendix does not list income: %v", appendix.Rows)
	}

	if !res.Entries[2].Excluded() || res.Entries[2].Spec.Name != "income" {
		t.Errorf("expected entry 2 to be the excluded income entry, got %+v", res.Entries[2])
	}
}

func TestBuildContinuousStatistics(t *testing.T) {
	t.Parallel()

	res, err := quietAssembler().Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, ok := tableByTitle(res.Document, "age summary")
	if !ok {
		t.Fatal("age summary not found")
	}
	want := map[string]string{
		"Total cases":     "4",
		"Missing cases":   "1",
		"Unit of measure": "Years",
		"Range":           "minimum value: 10.00 to maximum value: 30.00",
		"Mean":            "20.00",
		"Median":          "20.00",
		"10th percentile": "12.00",
	}
	got := map[string]string{}
	for _, row := range tbl.Rows {
		got[row[0]] = row[1]
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestBuildEmptyMetadata(t *testing.T) {
	t.Parallel()

	in := sampleInput(t)
	in.Metadata = mustMetadata(t)

	res, err := quietAssembler().Build(in)
	if res != nil {
		t.Error("no result may be returned on failure")
	}
	var ce *model.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, model.ErrEmptyMetadata) {
		t.Errorf("expected ErrEmptyMetadata, got %v", err)
	}
}

func TestBuildConfigurationErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*Input)
		sentinel error
	}{
		{
			name:     "nil metadata",
			mutate:   func(in *Input) { in.Metadata = nil },
			sentinel: model.ErrEmptyMetadata,
		},
		{
			name:     "zero column table",
			mutate:   func(in *Input) { in.Table, _ = model.NewTable() },
			sentinel: model.ErrEmptyTable,
		},
		{
			name: "unknown vocabulary",
			mutate: func(in *Input) {
				m, _ := model.NewMetadataModel(model.ColumnSpec{Name: "county", Type: model.TypeCategorical, VocabularyRef: "missing"})
				in.Metadata = m
			},
			sentinel: model.ErrUnknownVocabulary,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := sampleInput(t)
			tc.mutate(&in)
			res, err := quietAssembler().Build(in)
			if res != nil {
				t.Error("no result may be returned on failure")
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("expected %v, got %v", tc.sentinel, err)
			}
			if !model.IsConfigurationError(err) {
				t.Errorf("expected a ConfigurationError, got %T", err)
			}
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := quietAssembler(WithConcurrency(1)).Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := quietAssembler(WithConcurrency(8)).Build(sampleInput(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first.Document, again.Document) {
			t.Fatal("documents differ between builds")
		}
		if first.Digest != again.Digest {
			t.Fatalf("digests differ: %s vs %s", first.Digest, again.Digest)
		}
	}
}

func TestBuildTruncatesHighCardinality(t *testing.T) {
	t.Parallel()

	values := make([]string, 0, 40)
	for i := 0; i < 30; i++ {
		values = append(values, fmt.Sprintf("v%02d", i))
	}
	values = append(values, "v00", "v00", "v01")

	in := Input{
		Metadata: mustMetadata(t, model.ColumnSpec{Name: "zip", Type: model.TypeCategorical}),
		Table:    mustTable(t, model.Column{Name: "zip", Values: model.Strings(values...)}),
	}
	policy := DefaultPolicy()
	policy.TopN = 5
	policy.CardinalityThreshold = 10

	res, err := quietAssembler(WithPolicy(policy)).Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, ok := tableByTitle(res.Document, "zip frequencies")
	if !ok {
		t.Fatal("frequency table not found")
	}
	if len(tbl.Rows) != 6 {
		t.Fatalf("expected 5 rows plus other, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "v00" || tbl.Rows[0][2] != "3" || tbl.Rows[1][0] != "v01" {
		t.Errorf("unexpected leading rows %v", tbl.Rows[:2])
	}
	other := tbl.Rows[5]
	if other[0] != "Other" || other[1] != "25 other values" || other[2] != "25" {
		t.Errorf("unexpected aggregate row %v", other)
	}
	if len(res.Entries[0].Summary.Frequencies) != 30 {
		t.Errorf("the summary must keep all 30 values, got %d", len(res.Entries[0].Summary.Frequencies))
	}
}

func TestBuildTruncationBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		distinct  int
		topN      int
		threshold int
		wantRows  int
		wantOther string
	}{
		{name: "top n above distinct count", distinct: 30, topN: 50, threshold: 20, wantRows: 30},
		{name: "top n equal to distinct count", distinct: 30, topN: 30, threshold: 20, wantRows: 30},
		{name: "top n between threshold and distinct count", distinct: 30, topN: 25, threshold: 20, wantRows: 26, wantOther: "5 other values"},
		{name: "distinct count below threshold", distinct: 30, topN: 5, threshold: 40, wantRows: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values := make([]string, 0, tt.distinct)
			for i := 0; i < tt.distinct; i++ {
				values = append(values, fmt.Sprintf("v%02d", i))
			}
			in := Input{
				Metadata: mustMetadata(t, model.ColumnSpec{Name: "zip", Type: model.TypeCategorical}),
				Table:    mustTable(t, model.Column{Name: "zip", Values: model.Strings(values...)}),
			}
			policy := DefaultPolicy()
			policy.TopN = tt.topN
			policy.CardinalityThreshold = tt.threshold

			res, err := quietAssembler(WithPolicy(policy)).Build(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tbl, ok := tableByTitle(res.Document, "zip frequencies")
			if !ok {
				t.Fatal("frequency table not found")
			}
			if len(tbl.Rows) != tt.wantRows {
				t.Fatalf("expected %d rows, got %d", tt.wantRows, len(tbl.Rows))
			}
			last := tbl.Rows[len(tbl.Rows)-1]
			if tt.wantOther == "" {
				if last[0] == policy.OtherLabel {
					t.Errorf("expected no aggregate row, got %v", last)
				}
				return
			}
			if last[0] != policy.OtherLabel || last[1] != tt.wantOther {
				t.Errorf("expected aggregate row %q, got %v", tt.wantOther, last)
			}
		})
	}
}

func TestBuildShowsUnobservedCodes(t *testing.T) {
	t.Parallel()

	in := Input{
		Metadata: mustMetadata(t, model.ColumnSpec{Name: "sex", Type: model.TypeCategorical,
			ValidValues: model.CodeSet{{Value: "1", Label: "Male"}, {Value: "2", Label: "Female"}, {Value: "9", Label: "Refused"}}}),
		Table: mustTable(t, model.Column{Name: "sex", Values: model.Strings("2", "1", "2")}),
	}
	res, err := quietAssembler().Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tbl, _ := tableByTitle(res.Document, "sex frequencies")
	last := tbl.Rows[len(tbl.Rows)-1]
	if !reflect.DeepEqual(last, []string{"9", "Refused", "0", "0.00%"}) {
		t.Errorf("expected the unobserved code last with count 0, got %v", last)
	}
	if _, ok := tableByTitle(res.Document, AppendixTitle); ok {
		t.Error("a clean build must not render the appendix")
	}
}

func TestBuildFigureOrder(t *testing.T) {
	t.Parallel()

	res, err := quietAssembler().Build(sampleInput(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var captions []string
	for _, ins := range res.Document.Instructions {
		if img, ok := ins.(layout.Image); ok {
			captions = append(captions, img.Caption)
		}
	}
	if !reflect.DeepEqual(captions, []string{"Chart", "Map"}) {
		t.Errorf("expected figures in placement order, got %v", captions)
	}
}

func TestPhaseMachine(t *testing.T) {
	t.Parallel()

	m := &phaseMachine{}
	if err := m.advance(PhaseKeyTerms); err != nil {
		t.Fatalf("skipping a phase forward should be allowed: %v", err)
	}
	if err := m.advance(PhaseFrontMatter); err == nil {
		t.Error("moving backwards must fail")
	}
	if err := m.advance(PhaseKeyTerms); err == nil {
		t.Error("re-entering a phase must fail")
	}
	if err := m.advance(PhaseDone); err != nil || m.current != PhaseDone {
		t.Errorf("expected to reach done, got %v", err)
	}
	if err := m.advance(PhaseDone + 1); err == nil {
		t.Error("advancing past done must fail")
	}
	if PhaseVariables.String() != "variables" || Phase(42).String() != "Phase(42)" {
		t.Error("unexpected phase names")
	}
}

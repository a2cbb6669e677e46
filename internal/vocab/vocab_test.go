package vocab

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
)

func summaryOf(codes ...string) stats.Summary {
	spec := model.ColumnSpec{Name: "x", Type: model.TypeCategorical}
	return stats.Summarize(model.Strings(codes...), spec, stats.DefaultOptions())
}

func TestResolveCodeSetFlagsUnmapped(t *testing.T) {
	t.Parallel()

	spec := model.ColumnSpec{
		Name:        "county",
		Type:        model.TypeCategorical,
		ValidValues: model.CodeSet{{Value: "A", Label: "Adams"}, {Value: "B"}},
	}
	res, err := NewResolver(nil).Resolve(summaryOf("A", "A", "B", "C"), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Label{
		{Code: "A", Text: "Adams", Mapped: true},
		{Code: "B", Text: "B", Mapped: true},
		{Code: "C", Text: "C", Mapped: false},
	}
	if !reflect.DeepEqual(res.Labels, expected) {
		t.Errorf("expected %+v, got %+v", expected, res.Labels)
	}
	if got := res.Unmapped(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("expected [C] unmapped, got %v", got)
	}
	c, _ := res.Lookup("C")
	if c.Display() != "C (unmapped)" {
		t.Errorf("unexpected display %q", c.Display())
	}
}

func TestResolveVocabularyPrecedence(t *testing.T) {
	t.Parallel()

	vocabs := model.Vocabularies{"states": {"01": "Alabama", "02": "Alaska"}}
	spec := model.ColumnSpec{
		Name:          "state",
		Type:          model.TypeCategorical,
		VocabularyRef: "states",
		ValidValues:   model.CodeSet{{Value: "01", Label: "AL"}, {Value: "03", Label: "Unused"}, {Value: "04", Label: "Inline only"}},
	}
	res, err := NewResolver(vocabs).Resolve(summaryOf("01", "04", "99"), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if l, _ := res.Lookup("01"); l.Text != "Alabama" || !l.Mapped {
		t.Errorf("vocabulary label should win, got %+v", l)
	}
	if l, _ := res.Lookup("04"); l.Text != "Inline only" || !l.Mapped {
		t.Errorf("inline label should be the fallback, got %+v", l)
	}
	if l, _ := res.Lookup("99"); l.Mapped || l.Text != "99" {
		t.Errorf("unknown code should show raw and unmapped, got %+v", l)
	}
	if len(res.Unobserved) != 1 || res.Unobserved[0].Code != "03" {
		t.Errorf("expected 03 unobserved, got %+v", res.Unobserved)
	}
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	spec := model.ColumnSpec{Name: "x", Type: model.TypeCategorical}
	res, err := NewResolver(nil).Resolve(summaryOf("q", "r"), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, l := range res.Labels {
		if !l.Mapped || l.Text != l.Code {
			t.Errorf("expected identity mapping, got %+v", l)
		}
	}
}

func TestResolveUnknownVocabulary(t *testing.T) {
	t.Parallel()

	spec := model.ColumnSpec{Name: "x", Type: model.TypeCategorical, VocabularyRef: "nope"}
	_, err := NewResolver(model.Vocabularies{}).Resolve(summaryOf("a"), spec)
	if !errors.Is(err, model.ErrUnknownVocabulary) {
		t.Errorf("expected ErrUnknownVocabulary, got %v", err)
	}

	meta, err := model.NewMetadataModel(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewResolver(nil).Check(meta); !model.IsConfigurationError(err) {
		t.Errorf("expected a ConfigurationError from Check, got %v", err)
	}
}

package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/codebook/internal/model"
)

const sampleMetadata = `
columns:
  hhid:
    label: Household ID
    type: identifier
    length: 8
    notes: |
      Primary key.
  county:
    label: County
    type: categorical
    valid_values:
      - A
      - value: B
        label: Brown
    missing_codes: ["-9", NA]
  age:
    label: Age
    type: continuous
    measure_unit: Years
    AnalysisUnit: Person
    valid_values: {min: 0, max: 120}
  visit:
    type: date
    valid_values:
      min: 2020-01-01
  state:
    type: categorical
    vocabulary_ref: states
vocabularies:
  states:
    "01": Alabama
    "02": Alaska
`

func TestParse(t *testing.T) {
	t.Parallel()

	m, vocabs, err := Parse([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	specs := m.Specs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	expected := []string{"hhid", "county", "age", "visit", "state"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("expected file order %v, got %v", expected, names)
		}
	}

	hhid := specs[0]
	if hhid.Type != model.TypeIdentifier || hhid.Length != 8 || hhid.Notes != "Primary key." {
		t.Errorf("unexpected hhid spec %+v", hhid)
	}

	county := specs[1]
	cs, ok := county.CodeSet()
	if !ok || len(cs) != 2 || cs[1].Label != "Brown" {
		t.Errorf("unexpected county codes %+v", county.ValidValues)
	}
	if len(county.MissingCodes) != 2 || county.MissingCodes[1] != "NA" {
		t.Errorf("unexpected missing codes %v", county.MissingCodes)
	}

	age := specs[2]
	rng, ok := age.ValidValues.(model.NumericRange)
	if !ok || *rng.Min != 0 || *rng.Max != 120 {
		t.Errorf("unexpected age range %+v", age.ValidValues)
	}
	if age.MeasureUnit != "Years" || age.AnalysisUnit != "Person" {
		t.Errorf("unexpected units %q / %q", age.MeasureUnit, age.AnalysisUnit)
	}

	visit := specs[3]
	dr, ok := visit.ValidValues.(model.DateRange)
	if !ok || !dr.Min.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) || !dr.Max.IsZero() {
		t.Errorf("unexpected visit range %+v", visit.ValidValues)
	}

	if vocabs["states"]["01"] != "Alabama" {
		t.Errorf("expected inline vocabulary, got %v", vocabs)
	}
}

func TestParseLegacyLayout(t *testing.T) {
	t.Parallel()

	data := `
ownershp:
  label: Tenure Status
  DataType: Int
  categorical: true
  categories_dict:
    1: 1. Owned or being bought (loan)
    2: 2. Rented
numprec:
  label: Number of Person Records
  DataType: Int
`
	m, vocabs, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vocabs != nil {
		t.Errorf("expected no vocabularies, got %v", vocabs)
	}
	own, _ := m.Get("ownershp")
	if own.Type != model.TypeCategorical {
		t.Errorf("expected the categorical flag to win, got %s", own.Type)
	}
	cs, _ := own.CodeSet()
	if len(cs) != 2 || cs[0].Value != "1" || cs[1].Label != "2. Rented" {
		t.Errorf("unexpected categories %+v", cs)
	}
	num, _ := m.Get("numprec")
	if num.Type != model.TypeContinuous {
		t.Errorf("expected Int to map to continuous, got %s", num.Type)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		data     string
		sentinel error
	}{
		{"empty", "", model.ErrEmptyMetadata},
		{"not a mapping", "- a\n- b\n", model.ErrMalformedSpec},
		{"no type", "age:\n  label: Age\n", model.ErrMalformedSpec},
		{"unknown type", "age:\n  type: ordinal\n", model.ErrMalformedSpec},
		{"bad range", "age:\n  type: continuous\n  valid_values: {min: low}\n", model.ErrMalformedSpec},
		{"bad length", "id:\n  type: id\n  length: wide\n", model.ErrMalformedSpec},
		{"duplicate", "a:\n  type: text\nA:\n  type: text\na:\n  type: date\n", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse([]byte(tc.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.sentinel != nil && !errors.Is(err, tc.sentinel) {
				t.Errorf("expected %v, got %v", tc.sentinel, err)
			}
		})
	}
}

func TestLoadVocabularies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	if err := os.WriteFile(path, []byte("colors:\n  R: Red\n  G: Green\nsizes:\n  S: Small\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := LoadVocabularies(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["colors"]["G"] != "Green" || v["sizes"]["S"] != "Small" {
		t.Errorf("unexpected vocabularies %v", v)
	}

	merged := Merge(v, model.Vocabularies{"sizes": {"L": "Large"}})
	if _, ok := merged["sizes"]["S"]; ok {
		t.Error("later vocabularies should replace earlier ones")
	}
	if merged["colors"]["R"] != "Red" {
		t.Error("unrelated vocabularies should be kept")
	}

	if _, err := LoadVocabularies(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

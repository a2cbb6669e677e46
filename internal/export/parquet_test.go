package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
	"github.com/nao1215/codebook/internal/validate"
)

func testEntries() []codebook.Entry {
	age := model.ColumnSpec{Name: "age", Type: model.TypeContinuous, Label: "Age in years", MeasureUnit: "years", Length: 3}
	sex := model.ColumnSpec{
		Name:        "sex",
		Type:        model.TypeCategorical,
		ValidValues: model.CodeSet{{Value: "1", Label: "Male"}, {Value: "2", Label: "Female"}},
	}
	return []codebook.Entry{
		{
			Spec: age,
			Summary: stats.Summary{
				Type: model.TypeContinuous, NTotal: 3, NValid: 3,
				Numeric: &stats.NumericSummary{Defined: true, Min: 10, Max: 30, Mean: 20},
			},
		},
		{
			Spec: sex,
			Summary: stats.Summary{
				Type: model.TypeCategorical, NTotal: 3, NValid: 2, NMissing: 1,
				Frequencies: []stats.Frequency{{Value: "1", Count: 1}, {Value: "2", Count: 1}},
			},
		},
		{
			Spec:      model.ColumnSpec{Name: "weight", Type: model.TypeContinuous},
			Exclusion: &validate.Issue{Kind: validate.KindMissingInData, Message: "column not found in data"},
		},
	}
}

func TestRows(t *testing.T) {
	t.Parallel()

	rows := Rows(testEntries())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	age := rows[0]
	if age.Position != 1 || age.Name != "age" || age.Type != "continuous" {
		t.Errorf("unexpected age row: %+v", age)
	}
	if age.Length == nil || *age.Length != 3 {
		t.Errorf("expected length 3, got %v", age.Length)
	}
	if age.Min == nil || *age.Min != 10 || age.Mean == nil || *age.Mean != 20 {
		t.Errorf("expected numeric bounds, got min=%v mean=%v", age.Min, age.Mean)
	}
	if age.Categorical {
		t.Error("expected age not categorical")
	}

	sex := rows[1]
	if !sex.Categorical {
		t.Error("expected sex categorical")
	}
	if sex.Label != nil {
		t.Errorf("expected nil label, got %q", *sex.Label)
	}
	if sex.ValidValues == nil || *sex.ValidValues != "1, 2" {
		t.Errorf("unexpected valid values: %v", sex.ValidValues)
	}
	if sex.Distinct == nil || *sex.Distinct != 2 {
		t.Errorf("expected 2 distinct, got %v", sex.Distinct)
	}
	if sex.Min != nil {
		t.Error("expected no numeric bounds for categorical")
	}

	weight := rows[2]
	if !weight.Excluded || weight.Exclusion == nil {
		t.Fatalf("expected excluded weight, got %+v", weight)
	}
	if *weight.Exclusion != "MissingInData: column not found in data" {
		t.Errorf("unexpected exclusion: %q", *weight.Exclusion)
	}
}

func TestWriteParquet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := WriteParquet(&buf, testEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte("PAR1")) || !bytes.HasSuffix(data, []byte("PAR1")) {
		t.Error("expected parquet magic at both ends of the file")
	}
}

func TestWriteParquetFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dictionary.parquet")
	if _, err := WriteParquetFile(path, testEntries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty file")
	}
}

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/validate"
	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// parallelism is the number of goroutines the parquet writer uses to
// encode a row group.
const parallelism = 4

type field struct {
	name     string
	physical string
	required bool
}

var dictionaryFields = []field{
	{name: "position", physical: "INT64", required: true},
	{name: "name", physical: "BYTE_ARRAY", required: true},
	{name: "label", physical: "BYTE_ARRAY"},
	{name: "type", physical: "BYTE_ARRAY", required: true},
	{name: "length", physical: "INT64"},
	{name: "categorical", physical: "BOOLEAN", required: true},
	{name: "valid_values", physical: "BYTE_ARRAY"},
	{name: "vocabulary_ref", physical: "BYTE_ARRAY"},
	{name: "measure_unit", physical: "BYTE_ARRAY"},
	{name: "n_total", physical: "INT64", required: true},
	{name: "n_valid", physical: "INT64", required: true},
	{name: "n_missing", physical: "INT64", required: true},
	{name: "n_invalid", physical: "INT64", required: true},
	{name: "distinct", physical: "INT64"},
	{name: "min", physical: "DOUBLE"},
	{name: "max", physical: "DOUBLE"},
	{name: "mean", physical: "DOUBLE"},
	{name: "excluded", physical: "BOOLEAN", required: true},
	{name: "exclusion", physical: "BYTE_ARRAY"},
}

// Row is one data dictionary record.
type Row struct {
	Position      int64    `json:"position"`
	Name          string   `json:"name"`
	Label         *string  `json:"label"`
	Type          string   `json:"type"`
	Length        *int64   `json:"length"`
	Categorical   bool     `json:"categorical"`
	ValidValues   *string  `json:"valid_values"`
	VocabularyRef *string  `json:"vocabulary_ref"`
	MeasureUnit   *string  `json:"measure_unit"`
	NTotal        int64    `json:"n_total"`
	NValid        int64    `json:"n_valid"`
	NMissing      int64    `json:"n_missing"`
	NInvalid      int64    `json:"n_invalid"`
	Distinct      *int64   `json:"distinct"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	Mean          *float64 `json:"mean"`
	Excluded      bool     `json:"excluded"`
	Exclusion     *string  `json:"exclusion"`
}

// Rows converts build entries into dictionary rows, in entry order.
func Rows(entries []codebook.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		spec := e.Spec
		row := Row{
			Position:      int64(i + 1),
			Name:          spec.Name,
			Label:         optString(spec.Label),
			Type:          spec.Type.String(),
			Categorical:   spec.Type == model.TypeCategorical,
			VocabularyRef: optString(spec.VocabularyRef),
			MeasureUnit:   optString(spec.MeasureUnit),
			NTotal:        int64(e.Summary.NTotal),
			NValid:        int64(e.Summary.NValid),
			NMissing:      int64(e.Summary.NMissing),
			NInvalid:      int64(e.Summary.NInvalid),
			Excluded:      e.Excluded(),
		}
		if spec.Length > 0 {
			n := int64(spec.Length)
			row.Length = &n
		}
		if spec.ValidValues != nil {
			row.ValidValues = optString(spec.ValidValues.Describe())
		}
		if d := e.Summary.Distinct(); d > 0 {
			n := int64(d)
			row.Distinct = &n
		}
		if num := e.Summary.Numeric; num != nil && num.Defined {
			row.Min, row.Max, row.Mean = &num.Min, &num.Max, &num.Mean
		}
		if e.Exclusion != nil {
			row.Exclusion = optString(exclusionText(e.Exclusion))
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteParquet writes the dictionary rows for entries to w and returns the
// number of rows written.
func WriteParquet(w io.Writer, entries []codebook.Entry) (int64, error) {
	pfw := writerfile.NewWriterFile(w)
	pw, err := writer.NewJSONWriter(schema(), pfw, parallelism)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	var written int64
	for _, row := range Rows(entries) {
		rec, err := json.Marshal(row)
		if err != nil {
			_ = pw.WriteStop()
			return written, fmt.Errorf("failed to encode row %s: %w", row.Name, err)
		}
		if err := pw.Write(string(rec)); err != nil {
			_ = pw.WriteStop()
			return written, fmt.Errorf("failed to write row %s: %w", row.Name, err)
		}
		written++
	}
	if err := pw.WriteStop(); err != nil {
		return written, fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return written, nil
}

// WriteParquetFile writes the dictionary to path. The file is only created
// once encoding has succeeded.
func WriteParquetFile(path string, entries []codebook.Entry) (int64, error) {
	var buf bytes.Buffer
	n, err := WriteParquet(&buf, entries)
	if err != nil {
		return n, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return n, fmt.Errorf("failed to write parquet file: %w", err)
	}
	return n, nil
}

func schema() string {
	fields := make([]map[string]string, 0, len(dictionaryFields))
	for _, f := range dictionaryFields {
		repetition := "OPTIONAL"
		if f.required {
			repetition = "REQUIRED"
		}
		tag := fmt.Sprintf("name=%s, type=%s, repetitiontype=%s", f.name, f.physical, repetition)
		if f.physical == "BYTE_ARRAY" {
			tag += ", convertedtype=UTF8"
		}
		fields = append(fields, map[string]string{"Tag": tag})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func exclusionText(issue *validate.Issue) string {
	return strings.TrimSpace(fmt.Sprintf("%s: %s", issue.Kind, issue.Message))
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

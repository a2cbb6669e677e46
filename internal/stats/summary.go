package stats

import (
	"time"

	"github.com/nao1215/codebook/internal/model"
)

// Default option values.
const (
	// DefaultSeed seeds example selection for text variables.
	DefaultSeed = 15151

	// DefaultExampleCount is the number of examples shown for text variables.
	DefaultExampleCount = 4
)

// DefaultPercentiles are reported for continuous variables.
var DefaultPercentiles = []int{10, 25, 50, 75, 90}

// Options tunes Summarize.
type Options struct {
	// Seed makes example selection reproducible.
	Seed uint64

	// ExampleCount is how many text examples to draw.
	ExampleCount int

	// Percentiles lists the percentiles (1-99) reported for continuous values.
	Percentiles []int

	// DateLayouts are tried in order for date variables.
	DateLayouts []string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Seed:         DefaultSeed,
		ExampleCount: DefaultExampleCount,
		Percentiles:  DefaultPercentiles,
	}
}

// Frequency is one row of a frequency table.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Percentile is one quantile of a numeric distribution.
type Percentile struct {
	P     int     `json:"p"`
	Value float64 `json:"value"`
}

// NumericSummary describes a continuous variable.
// When Defined is false no value contributed and every statistic is
// undefined rather than zero.
type NumericSummary struct {
	Defined     bool         `json:"defined"`
	Min         float64      `json:"min"`
	Max         float64      `json:"max"`
	Mean        float64      `json:"mean"`
	Median      float64      `json:"median"`
	StdDev      float64      `json:"std_dev"`
	Percentiles []Percentile `json:"percentiles,omitempty"`
}

// DateSummary describes a date variable.
type DateSummary struct {
	Defined bool      `json:"defined"`
	Min     time.Time `json:"min"`
	Max     time.Time `json:"max"`
}

// TextSummary describes a text or identifier variable.
type TextSummary struct {
	NUnique   int      `json:"n_unique"`
	MinLength int      `json:"min_length"`
	MaxLength int      `json:"max_length"`
	Examples  []string `json:"examples,omitempty"`
}

// Summary is the computed description of one column.
// Exactly one payload field is set, chosen by Type.
type Summary struct {
	Type model.DeclaredType `json:"type"`

	NTotal   int `json:"n_total"`
	NMissing int `json:"n_missing"`

	// NValid counts values that contributed to the payload.
	NValid int `json:"n_valid"`

	// NInvalid counts non-missing values that failed to parse as the
	// declared type. NMissing + NValid + NInvalid == NTotal.
	NInvalid int `json:"n_invalid"`

	Frequencies []Frequency     `json:"frequencies,omitempty"`
	Numeric     *NumericSummary `json:"numeric,omitempty"`
	Date        *DateSummary    `json:"date,omitempty"`
	Text        *TextSummary    `json:"text,omitempty"`
}

// Distinct returns the number of distinct observed values for payloads
// that track it.
func (s Summary) Distinct() int {
	switch {
	case s.Frequencies != nil:
		return len(s.Frequencies)
	case s.Text != nil:
		return s.Text.NUnique
	default:
		return 0
	}
}

// FrequencyTotal returns the sum of all frequency counts.
func (s Summary) FrequencyTotal() int {
	total := 0
	for _, f := range s.Frequencies {
		total += f.Count
	}
	return total
}

package model

import (
	"fmt"
	"strconv"
	"time"
)

// ValidValues constrains the values a column may take.
// It is a closed set: CodeSet, NumericRange, and DateRange are the only
// implementations, so the shape of the constraint is known statically.
type ValidValues interface {
	// Describe returns a one-line human-readable form of the constraint.
	Describe() string

	validValues()
}

// Code is one allowed value of a coded variable, with an optional label.
type Code struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// CodeSet is an ordered list of allowed codes.
type CodeSet []Code

func (CodeSet) validValues() {}

// Describe lists the codes separated by commas.
func (cs CodeSet) Describe() string {
	out := ""
	for i, c := range cs {
		if i > 0 {
			out += ", "
		}
		out += c.Value
	}
	return out
}

// Contains reports whether code is declared in the set.
func (cs CodeSet) Contains(code string) bool {
	_, ok := cs.Lookup(code)
	return ok
}

// Lookup returns the declared code matching value.
func (cs CodeSet) Lookup(value string) (Code, bool) {
	for _, c := range cs {
		if c.Value == value {
			return c, true
		}
	}
	return Code{}, false
}

// NumericRange is an inclusive numeric interval. A nil bound is open.
type NumericRange struct {
	Min *float64
	Max *float64
}

func (NumericRange) validValues() {}

// Describe renders the interval, e.g. "0 to 120".
func (r NumericRange) Describe() string {
	return describeBounds(formatBound(r.Min), formatBound(r.Max))
}

// Contains reports whether x lies within the interval.
func (r NumericRange) Contains(x float64) bool {
	if r.Min != nil && x < *r.Min {
		return false
	}
	if r.Max != nil && x > *r.Max {
		return false
	}
	return true
}

// DateRange is an inclusive date interval. A zero bound is open.
type DateRange struct {
	Min time.Time
	Max time.Time
}

func (DateRange) validValues() {}

// Describe renders the interval in DateLayout.
func (r DateRange) Describe() string {
	lo, hi := "", ""
	if !r.Min.IsZero() {
		lo = r.Min.Format(DateLayout)
	}
	if !r.Max.IsZero() {
		hi = r.Max.Format(DateLayout)
	}
	return describeBounds(lo, hi)
}

// Contains reports whether t lies within the interval.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Min.IsZero() && t.Before(r.Min) {
		return false
	}
	if !r.Max.IsZero() && t.After(r.Max) {
		return false
	}
	return true
}

func formatBound(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

func describeBounds(lo, hi string) string {
	switch {
	case lo != "" && hi != "":
		return lo + " to " + hi
	case lo != "":
		return "at least " + lo
	case hi != "":
		return "at most " + hi
	default:
		return "unbounded"
	}
}

// ColumnSpec describes one declared variable of a dataset.
type ColumnSpec struct {
	// Name matches the table column header. Required and unique.
	Name string

	// Type is the declared variable kind.
	Type DeclaredType

	// Label is the human-readable description of the variable.
	Label string

	// ValidValues optionally constrains the observed values.
	ValidValues ValidValues

	// MissingCodes are sentinel values treated as absent (e.g. "-999", "NA").
	MissingCodes []string

	// VocabularyRef names a controlled vocabulary used to label codes.
	VocabularyRef string

	// AnalysisUnit is what one row represents (e.g. "Household").
	AnalysisUnit string

	// MeasureUnit is the unit the value is expressed in (e.g. "Persons").
	MeasureUnit string

	// Notes are free-form remarks printed after the variable entry.
	Notes string

	// Length is the documented field width, 0 when not declared.
	Length int
}

// CodeSet returns the declared code set, if the spec has one.
func (s ColumnSpec) CodeSet() (CodeSet, bool) {
	cs, ok := s.ValidValues.(CodeSet)
	return cs, ok && len(cs) > 0
}

// IsMissing reports whether a cell counts as absent for this column.
func (s ColumnSpec) IsMissing(v Value) bool {
	if v.IsEmpty() {
		return true
	}
	text := v.Text()
	for _, code := range s.MissingCodes {
		if code == text {
			return true
		}
	}
	return false
}

// Check verifies the structural invariants of a single spec.
// It does not look at data; violations are configuration errors.
func (s ColumnSpec) Check() error {
	if s.Name == "" {
		return NewConfigurationError("column spec has an empty name", ErrMalformedSpec)
	}
	if !s.Type.IsValid() {
		return NewConfigurationError(
			fmt.Sprintf("column %q: declared type %q is not one of %v", s.Name, s.Type, AllDeclaredTypes),
			ErrMalformedSpec)
	}
	switch vv := s.ValidValues.(type) {
	case nil:
	case CodeSet:
		if s.Type == TypeContinuous || s.Type == TypeDate {
			return NewConfigurationError(
				fmt.Sprintf("column %q: a code list cannot constrain a %s variable", s.Name, s.Type),
				ErrMalformedSpec)
		}
		seen := make(map[string]bool, len(vv))
		for _, c := range vv {
			if seen[c.Value] {
				return NewConfigurationError(
					fmt.Sprintf("column %q: code %q is declared twice", s.Name, c.Value),
					ErrMalformedSpec)
			}
			seen[c.Value] = true
		}
	case NumericRange:
		if s.Type != TypeContinuous {
			return NewConfigurationError(
				fmt.Sprintf("column %q: a numeric range requires a continuous variable", s.Name),
				ErrMalformedSpec)
		}
		if vv.Min != nil && vv.Max != nil && *vv.Min > *vv.Max {
			return NewConfigurationError(
				fmt.Sprintf("column %q: range minimum exceeds maximum", s.Name),
				ErrMalformedSpec)
		}
	case DateRange:
		if s.Type != TypeDate {
			return NewConfigurationError(
				fmt.Sprintf("column %q: a date range requires a date variable", s.Name),
				ErrMalformedSpec)
		}
		if !vv.Min.IsZero() && !vv.Max.IsZero() && vv.Min.After(vv.Max) {
			return NewConfigurationError(
				fmt.Sprintf("column %q: range start is after range end", s.Name),
				ErrMalformedSpec)
		}
	}
	return nil
}

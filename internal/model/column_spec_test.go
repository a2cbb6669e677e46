package model

import (
	"errors"
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestColumnSpecCheck(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		spec    ColumnSpec
		wantErr bool
	}{
		{
			name: "categorical with codes",
			spec: ColumnSpec{Name: "county", Type: TypeCategorical, ValidValues: CodeSet{{Value: "A"}, {Value: "B"}}},
		},
		{
			name: "categorical without codes is allowed",
			spec: ColumnSpec{Name: "county", Type: TypeCategorical},
		},
		{
			name: "continuous with range",
			spec: ColumnSpec{Name: "age", Type: TypeContinuous, ValidValues: NumericRange{Min: ptr(0), Max: ptr(120)}},
		},
		{
			name:    "empty name",
			spec:    ColumnSpec{Type: TypeText},
			wantErr: true,
		},
		{
			name:    "unknown type",
			spec:    ColumnSpec{Name: "x", Type: DeclaredType("ordinal")},
			wantErr: true,
		},
		{
			name:    "code set on continuous",
			spec:    ColumnSpec{Name: "age", Type: TypeContinuous, ValidValues: CodeSet{{Value: "1"}}},
			wantErr: true,
		},
		{
			name:    "numeric range on categorical",
			spec:    ColumnSpec{Name: "county", Type: TypeCategorical, ValidValues: NumericRange{Min: ptr(1)}},
			wantErr: true,
		},
		{
			name:    "inverted numeric range",
			spec:    ColumnSpec{Name: "age", Type: TypeContinuous, ValidValues: NumericRange{Min: ptr(10), Max: ptr(1)}},
			wantErr: true,
		},
		{
			name: "inverted date range",
			spec: ColumnSpec{Name: "d", Type: TypeDate, ValidValues: DateRange{
				Min: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				Max: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			}},
			wantErr: true,
		},
		{
			name:    "repeated code",
			spec:    ColumnSpec{Name: "county", Type: TypeCategorical, ValidValues: CodeSet{{Value: "A"}, {Value: "A"}}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.spec.Check()
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedSpec) {
					t.Errorf("expected ErrMalformedSpec, got %v", err)
				}
				if !IsConfigurationError(err) {
					t.Errorf("expected a ConfigurationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestColumnSpecIsMissing(t *testing.T) {
	t.Parallel()

	spec := ColumnSpec{Name: "income", Type: TypeContinuous, MissingCodes: []string{"-999", "NA"}}

	testCases := []struct {
		value    Value
		expected bool
	}{
		{Empty(), true},
		{String(" "), true},
		{String("-999"), true},
		{Number(-999), true},
		{String(" NA "), true},
		{String("na"), false},
		{String("12"), false},
	}

	for _, tc := range testCases {
		if got := spec.IsMissing(tc.value); got != tc.expected {
			t.Errorf("IsMissing(%+v) = %v, expected %v", tc.value, got, tc.expected)
		}
	}
}

func TestValidValuesDescribe(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		vv       ValidValues
		expected string
	}{
		{"code set", CodeSet{{Value: "A"}, {Value: "B", Label: "Bee"}}, "A, B"},
		{"closed range", NumericRange{Min: ptr(0), Max: ptr(1.5)}, "0 to 1.5"},
		{"lower bound", NumericRange{Min: ptr(18)}, "at least 18"},
		{"open range", NumericRange{}, "unbounded"},
		{"date range", DateRange{Max: time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)}, "at most 2020-12-31"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.vv.Describe(); got != tc.expected {
				t.Errorf("Describe() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

package model

import (
	"errors"
	"testing"
)

func TestParseDeclaredType(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected DeclaredType
	}{
		{"categorical", TypeCategorical},
		{"Category", TypeCategorical},
		{" continuous ", TypeContinuous},
		{"numeric", TypeContinuous},
		{"DATE", TypeDate},
		{"datetime", TypeDate},
		{"text", TypeText},
		{"string", TypeText},
		{"identifier", TypeIdentifier},
		{"id", TypeIdentifier},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDeclaredType(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseDeclaredType(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := ParseDeclaredType("boolean")
		if !errors.Is(err, ErrMalformedSpec) {
			t.Errorf("expected ErrMalformedSpec, got %v", err)
		}
	})
}

func TestDeclaredTypeIsValid(t *testing.T) {
	t.Parallel()

	for _, typ := range AllDeclaredTypes {
		if !typ.IsValid() {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	if DeclaredType("ordinal").IsValid() {
		t.Error("expected unknown type to be invalid")
	}
	if !TypeContinuous.IsNumeric() || TypeCategorical.IsNumeric() {
		t.Error("only continuous should be numeric")
	}
}

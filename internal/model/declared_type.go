package model

import (
	"fmt"
	"strings"
)

// DeclaredType is the variable kind an author assigns to a column.
// It selects the validation rules and the summary payload for the column.
type DeclaredType string

// Declared type constants.
const (
	// TypeCategorical is a coded variable with a finite set of values.
	TypeCategorical DeclaredType = "categorical"
	// TypeContinuous is a numeric measurement.
	TypeContinuous DeclaredType = "continuous"
	// TypeDate is a calendar date or timestamp.
	TypeDate DeclaredType = "date"
	// TypeText is free text.
	TypeText DeclaredType = "text"
	// TypeIdentifier is a key such as a record or geography ID.
	TypeIdentifier DeclaredType = "identifier"
)

// AllDeclaredTypes lists every declared type in documentation order.
var AllDeclaredTypes = []DeclaredType{
	TypeCategorical,
	TypeContinuous,
	TypeDate,
	TypeText,
	TypeIdentifier,
}

// String returns the string representation of the DeclaredType.
func (t DeclaredType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the enumerated kinds.
func (t DeclaredType) IsValid() bool {
	switch t {
	case TypeCategorical, TypeContinuous, TypeDate, TypeText, TypeIdentifier:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of this type are parsed as numbers.
func (t DeclaredType) IsNumeric() bool {
	return t == TypeContinuous
}

// ParseDeclaredType converts a metadata type string to a DeclaredType.
// Matching is case-insensitive and accepts the aliases used by older
// metadata files ("category", "numeric", "string", "id").
func ParseDeclaredType(s string) (DeclaredType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "categorical", "category":
		return TypeCategorical, nil
	case "continuous", "numeric", "number", "float", "int":
		return TypeContinuous, nil
	case "date", "datetime":
		return TypeDate, nil
	case "text", "string":
		return TypeText, nil
	case "identifier", "id":
		return TypeIdentifier, nil
	default:
		return "", fmt.Errorf("%w: unknown declared type %q", ErrMalformedSpec, s)
	}
}

package validate

import "fmt"

// Severity classifies an Issue.
type Severity string

const (
	// SeverityError excludes the affected column's entry from the codebook.
	SeverityError Severity = "error"
	// SeverityWarning is reported but never blocks assembly.
	SeverityWarning Severity = "warning"
)

// Kind identifies the category of an Issue.
type Kind string

const (
	// KindMissingInData marks a declared column that the table lacks.
	KindMissingInData Kind = "MissingInData"
	// KindUndeclaredInMetadata marks a table column with no declaration.
	KindUndeclaredInMetadata Kind = "UndeclaredInMetadata"
	// KindTypeMismatch marks a value that does not parse as the declared type.
	KindTypeMismatch Kind = "TypeMismatch"
	// KindOutOfVocabulary marks a value outside the declared codes or range.
	KindOutOfVocabulary Kind = "OutOfVocabulary"
	// KindMissingValidValues marks a categorical column declared without codes.
	KindMissingValidValues Kind = "MissingValidValues"
	// KindDuplicateIdentifier marks an identifier column with repeated keys.
	KindDuplicateIdentifier Kind = "DuplicateIdentifier"
)

// Severity returns the fixed severity of the kind.
func (k Kind) Severity() Severity {
	switch k {
	case KindMissingInData, KindTypeMismatch:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	return string(k)
}

// Issue is one entry of a validation report.
type Issue struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Column   string   `json:"column"`

	// Value is the offending value, or a sample of it for TypeMismatch.
	Value string `json:"value,omitempty"`

	// Count is the number of rows carrying Value.
	Count int `json:"count,omitempty"`

	Message string `json:"message"`
}

// IsError reports whether the issue excludes its column.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// String formats the issue for logs and plain-text output.
func (i Issue) String() string {
	if i.Value == "" {
		return fmt.Sprintf("[%s] %s %s: %s", i.Severity, i.Kind, i.Column, i.Message)
	}
	return fmt.Sprintf("[%s] %s %s=%q (x%d): %s", i.Severity, i.Kind, i.Column, i.Value, i.Count, i.Message)
}

func newIssue(kind Kind, column, value string, count int, message string) Issue {
	return Issue{
		Kind:     kind,
		Severity: kind.Severity(),
		Column:   column,
		Value:    value,
		Count:    count,
		Message:  message,
	}
}

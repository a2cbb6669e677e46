package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for invalid build inputs.
// They are wrapped by ConfigurationError so callers can use errors.Is.
var (
	// ErrEmptyMetadata is returned when the metadata model declares no columns.
	ErrEmptyMetadata = errors.New("metadata declares no columns")

	// ErrEmptyTable is returned when the data table has no columns.
	ErrEmptyTable = errors.New("data table has no columns")

	// ErrDuplicateColumn is returned when two specs share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrMalformedSpec is returned when a column spec breaks a structural rule.
	ErrMalformedSpec = errors.New("malformed column spec")

	// ErrMalformedTable is returned when a table is not rectangular or
	// has unnamed or repeated columns.
	ErrMalformedTable = errors.New("malformed data table")

	// ErrUnknownVocabulary is returned when a spec references a vocabulary
	// that was not supplied.
	ErrUnknownVocabulary = errors.New("unknown vocabulary reference")
)

// ConfigurationError reports inputs that can never produce a codebook.
// No document is produced when one is returned.
type ConfigurationError struct {
	Reason string
	Err    error
}

// NewConfigurationError wraps err with a human-readable reason.
func NewConfigurationError(reason string, err error) *ConfigurationError {
	return &ConfigurationError{Reason: reason, Err: err}
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// RenderingError reports a failure of the rendering surface while
// replaying a document. Earlier output may be incomplete.
type RenderingError struct {
	// Index is the position of the instruction that failed, -1 when the
	// failure happened outside an instruction.
	Index int
	Err   error
}

func (e *RenderingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("rendering error: %v", e.Err)
	}
	return fmt.Sprintf("rendering error at instruction %d: %v", e.Index, e.Err)
}

func (e *RenderingError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

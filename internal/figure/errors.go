package figure

import "errors"

var (
	// ErrUnsupportedFormat is returned for a file extension outside
	// AllowedFormats.
	ErrUnsupportedFormat = errors.New("unsupported figure format")

	// ErrFormatMismatch is returned when the image content does not match
	// its extension.
	ErrFormatMismatch = errors.New("figure content does not match its extension")

	// ErrEmptyFigure is returned for a zero-length image file.
	ErrEmptyFigure = errors.New("figure file is empty")
)

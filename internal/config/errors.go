package config

import "errors"

// Configuration validation errors, returned by the Validate methods so
// callers can use errors.Is.
var (
	// ErrNoInput is returned when a job names no data or metadata file.
	ErrNoInput = errors.New("no input specified: provide --data and --metadata or select a job")

	// ErrInvalidTopN is returned when top-N is not positive.
	ErrInvalidTopN = errors.New("invalid top-n: must be positive")

	// ErrInvalidCardinalityThreshold is returned for a negative threshold.
	ErrInvalidCardinalityThreshold = errors.New("invalid cardinality threshold: must be non-negative")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrUnknownFormat is returned for an output format outside Formats.
	ErrUnknownFormat = errors.New("unknown output format: use markdown, text or json")

	// ErrConflictingJobSelection is returned when --all and --job are both
	// given.
	ErrConflictingJobSelection = errors.New("conflicting job selection: --all and --job cannot be used together")

	// ErrNoProjectFile is returned when a job is selected but no project
	// file was found.
	ErrNoProjectFile = errors.New("no project file found: create one with 'codebook init'")

	// ErrNoJobs is returned when the project file declares no codebooks.
	ErrNoJobs = errors.New("project file declares no codebooks")

	// ErrJobNotFound is returned when a named job is not in the project file.
	ErrJobNotFound = errors.New("codebook job not found")

	// ErrUnnamedJob is returned when a codebook entry has no name.
	ErrUnnamedJob = errors.New("codebook entry has no name")

	// ErrDuplicateJob is returned when two jobs share a name.
	ErrDuplicateJob = errors.New("duplicate codebook job name")

	// ErrPublishNotConfigured is returned for --publish without a publish
	// section in the project file.
	ErrPublishNotConfigured = errors.New("publishing requested but no publish target is configured")
)

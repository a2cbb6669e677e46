// Package config provides configuration structures and utilities for
// codebook builds. It holds the run-level options set from CLI flags and
// the project file (.codebook.yaml) that declares codebook jobs with their
// inputs, presentation policy, publishing and history settings.
package config

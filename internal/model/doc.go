// Package model defines the core data structures shared by the codebook engine.
//
// This package contains the following main types:
//   - ColumnSpec: one declared variable (type, label, valid values, missing codes)
//   - MetadataModel: the ordered set of ColumnSpecs for a dataset
//   - Table: the rectangular dataset being documented
//   - Vocabulary: a controlled mapping from codes to labels
//
// It also holds the error taxonomy: ConfigurationError for inputs that can
// never produce a document and RenderingError for failures of an output
// surface.
//
// Models live in their own package so validate, stats, vocab, and codebook
// can all depend on them without import cycles.
package model

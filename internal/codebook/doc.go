// Package codebook assembles a codebook document from metadata, data, and
// optional narrative and figures.
//
// The Assembler walks a fixed sequence of phases (front matter, key terms,
// data dictionary, variables, figures, appendix) and emits a layout.Document.
// It performs no I/O. Loading inputs and rendering the document are done by
// the caller.
//
// Per-column work (summarize, then resolve vocabulary labels) has no shared
// state, so it runs concurrently. Results are stored by column index, and the
// document is laid out sequentially afterwards, so the output does not depend
// on scheduling.
package codebook

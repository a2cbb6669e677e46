// Package export writes the data dictionary of a build as a Parquet file,
// one row per declared variable, so it can be queried alongside the data.
package export

// Package stats computes per-variable descriptive summaries.
//
// Summarize is a pure function: the same values, spec, and options always
// produce an identical Summary. The payload depends on the declared type:
// a frequency table for categorical variables, a numeric summary for
// continuous ones, a date range for dates, and a length/uniqueness block
// for text and identifiers.
package stats

// Package validate cross-checks a metadata model against the table it
// describes.
//
// Validate never drops a mismatch. Every problem becomes an Issue in the
// returned Report, and the Report decides which issues exclude a column
// from the codebook (errors) and which are only surfaced (warnings).
package validate

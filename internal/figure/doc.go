// Package figure loads image files for placement in a codebook.
//
// Only raster formats a document surface can embed are accepted. Each
// image is checked against its extension and scanned for EXIF metadata
// that should not ship with a published codebook, such as GPS positions
// or author names.
package figure

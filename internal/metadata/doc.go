// Package metadata reads metadata and vocabulary files into the model types.
//
// Files are YAML (JSON is accepted as a subset). Column order in the file is
// the order variables appear in the codebook, so documents are decoded
// through yaml.Node rather than into Go maps.
package metadata

// Package publish copies build artifacts to an object store.
//
// Two stores are provided: S3Store for S3-compatible services and
// LocalStore for a directory tree. Artifacts of one build share a key
// prefix of the form <prefix>/<dataset>/<build id>/.
package publish

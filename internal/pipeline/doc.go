// Package pipeline runs codebook builds as a sequence of steps.
//
// A Build carries one job through the pipeline: inputs are loaded, the
// codebook is assembled, rendered, optionally exported to Parquet,
// published to an object store, and recorded in the build history. Each
// step reads what earlier steps left on the Build and adds its own output.
// BatchProcessor runs several builds concurrently.
package pipeline

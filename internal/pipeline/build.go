package pipeline

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/config"
	"github.com/nao1215/codebook/internal/database"
	"github.com/nao1215/codebook/internal/publish"
)

// Build is the state of one job as it moves through the pipeline.
type Build struct {
	// ID uniquely identifies the build in history and published keys.
	ID        string
	Job       config.Job
	StartedAt time.Time

	Input  codebook.Input
	Result *codebook.Result

	// Rendered is the document in the job's output format.
	Rendered []byte

	// Artifacts are the files produced so far, in production order.
	Artifacts []publish.Artifact

	// Locations lists where artifacts were written or published.
	Locations []string

	// Comparison is set by the record step when an earlier build exists.
	Comparison *database.Comparison

	// Steps lists the steps that ran, in order.
	Steps []string

	Err error
}

// NewBuild creates a Build for job with a fresh ID.
func NewBuild(job config.Job) *Build {
	return &Build{
		ID:        uuid.NewString(),
		Job:       job,
		StartedAt: time.Now().UTC(),
	}
}

// Dataset returns the history key of the build.
func (b *Build) Dataset() string {
	return b.Job.DatasetName()
}

// Failed reports whether a step returned an error.
func (b *Build) Failed() bool {
	return b.Err != nil
}

// HasValidationErrors reports whether the assembled codebook excluded any
// variable.
func (b *Build) HasValidationErrors() bool {
	return b.Result != nil && b.Result.Report.HasErrors()
}

func (b *Build) addArtifact(name string, data []byte) {
	b.Artifacts = append(b.Artifacts, publish.Artifact{Name: name, Data: data})
}

// SyncWriter serializes writes so concurrent builds printing to the same
// stream do not interleave.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

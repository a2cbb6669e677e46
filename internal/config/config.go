package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/stats"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "codebook"

	// DefaultFormat is the output format when none is given.
	DefaultFormat = "markdown"

	// DefaultTopN is the number of rows kept in a truncated frequency table.
	DefaultTopN = codebook.DefaultTopN

	// DefaultCardinalityThreshold is the distinct-value count above which a
	// frequency table is truncated.
	DefaultCardinalityThreshold = codebook.DefaultCardinalityThreshold

	// DefaultSeed makes text example selection reproducible.
	DefaultSeed = stats.DefaultSeed

	// DefaultConcurrency bounds how many columns are summarized at once.
	DefaultConcurrency = codebook.DefaultConcurrency

	// DefaultBatchSize is the number of jobs built at once by "build --all".
	DefaultBatchSize = 2
)

// Formats lists the accepted output format names.
var Formats = []string{"markdown", "md", "text", "txt", "json"}

// Config holds the options of one CLI invocation. It is populated from
// flags and the project file and passed down explicitly.
type Config struct {
	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit project file path. When empty the
	// project file is searched for with FindConfigFile.
	ConfigFilePath string

	// File is the loaded project file, nil when none was found.
	File *File

	// JobName selects a job from File. Empty means the ad-hoc job built
	// from flags.
	JobName string

	// All builds every job in File.
	All bool

	// Job holds inputs given directly on the command line. Its non-zero
	// fields override the selected job.
	Job Job

	// Publish uploads artifacts using File.Publish.
	Publish bool

	// DBDir is the directory of the build history database.
	DBDir string

	// SaveToDB records each build in the history database.
	SaveToDB bool

	// BatchSize is the number of jobs built concurrently.
	BatchSize int

	// StrictFigures turns sensitive image metadata into a build error.
	StrictFigures bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
		BatchSize: DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for codebook, which holds the
// build history database.
// On Linux: ~/.local/share/codebook
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for codebook.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile attaches a loaded project file and takes its history settings.
func (c *Config) ApplyFile(f *File) {
	c.File = f
	if f == nil {
		return
	}
	if f.History.Enabled != nil {
		c.SaveToDB = *f.History.Enabled
	}
	if f.History.Dir != "" {
		c.DBDir = f.History.Dir
	}
}

// Validate checks the run-level options.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.All && c.JobName != "" {
		return ErrConflictingJobSelection
	}
	if (c.All || c.JobName != "") && c.File == nil {
		return ErrNoProjectFile
	}
	if c.Publish && (c.File == nil || !c.File.Publish.Enabled()) {
		return ErrPublishNotConfigured
	}
	return c.Job.Settings.Validate()
}

// Jobs resolves the jobs this invocation builds, with defaults and flag
// overrides applied.
func (c *Config) Jobs() ([]Job, error) {
	var jobs []Job
	switch {
	case c.All:
		if c.File == nil {
			return nil, ErrNoProjectFile
		}
		if len(c.File.Jobs) == 0 {
			return nil, ErrNoJobs
		}
		for _, j := range c.File.Jobs {
			job, err := c.File.GetJob(j.Name)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
	case c.JobName != "":
		if c.File == nil {
			return nil, ErrNoProjectFile
		}
		job, err := c.File.GetJob(c.JobName)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	default:
		defaults := DefaultSettings()
		if c.File != nil {
			defaults = c.File.Defaults.merge(defaults)
		}
		job := Job{Settings: defaults}
		jobs = append(jobs, job)
	}

	for i := range jobs {
		jobs[i] = jobs[i].override(c.Job)
		if err := jobs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// ValidFormat reports whether name is an accepted output format.
func ValidFormat(name string) bool {
	return slices.Contains(Formats, strings.ToLower(name))
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Settings are the presentation options shared by the project defaults
// and each job. Zero values inherit from the enclosing level.
type Settings struct {
	// Format is the output format: markdown, text or json.
	Format string `yaml:"format,omitempty"`

	// TopN is the number of rows kept in a truncated frequency table.
	TopN int `yaml:"top_n,omitempty"`

	// CardinalityThreshold truncates frequency tables with more distinct
	// values than this.
	CardinalityThreshold int `yaml:"cardinality_threshold,omitempty"`

	// OtherLabel names the aggregate row of a truncated table.
	OtherLabel string `yaml:"other_label,omitempty"`

	// Seed makes text example selection reproducible.
	Seed uint64 `yaml:"seed,omitempty"`

	// Concurrency bounds how many columns are summarized at once.
	Concurrency int `yaml:"concurrency,omitempty"`

	// DateLayouts replace the built-in date layouts when set.
	DateLayouts []string `yaml:"date_layouts,omitempty"`

	DataDictionary       *bool `yaml:"data_dictionary,omitempty"`
	PageBreakPerVariable *bool `yaml:"page_break_per_variable,omitempty"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	yes := true
	return Settings{
		Format:               DefaultFormat,
		TopN:                 DefaultTopN,
		CardinalityThreshold: DefaultCardinalityThreshold,
		OtherLabel:           "Other",
		Seed:                 DefaultSeed,
		Concurrency:          DefaultConcurrency,
		DataDictionary:       &yes,
		PageBreakPerVariable: &yes,
	}
}

// Validate rejects negative counts and unknown formats. Zero values are
// accepted since they inherit. TopN may exceed CardinalityThreshold; such
// tables stay whole until they outgrow TopN as well.
func (s Settings) Validate() error {
	if s.Format != "" && !ValidFormat(s.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, s.Format)
	}
	if s.TopN < 0 {
		return ErrInvalidTopN
	}
	if s.CardinalityThreshold < 0 {
		return ErrInvalidCardinalityThreshold
	}
	if s.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

// merge returns s with zero fields taken from base.
func (s Settings) merge(base Settings) Settings {
	result := base
	if s.Format != "" {
		result.Format = s.Format
	}
	if s.TopN != 0 {
		result.TopN = s.TopN
	}
	if s.CardinalityThreshold != 0 {
		result.CardinalityThreshold = s.CardinalityThreshold
	}
	if s.OtherLabel != "" {
		result.OtherLabel = s.OtherLabel
	}
	if s.Seed != 0 {
		result.Seed = s.Seed
	}
	if s.Concurrency != 0 {
		result.Concurrency = s.Concurrency
	}
	if len(s.DateLayouts) > 0 {
		result.DateLayouts = s.DateLayouts
	}
	if s.DataDictionary != nil {
		result.DataDictionary = s.DataDictionary
	}
	if s.PageBreakPerVariable != nil {
		result.PageBreakPerVariable = s.PageBreakPerVariable
	}
	return result
}

// FigureRef places an image file in the codebook.
type FigureRef struct {
	Path    string `yaml:"path"`
	Caption string `yaml:"caption,omitempty"`
	Order   int    `yaml:"order,omitempty"`
}

// Job describes one codebook to build.
type Job struct {
	// Name identifies the job and is the dataset key in build history.
	Name  string `yaml:"name"`
	Title string `yaml:"title,omitempty"`

	Data         string      `yaml:"data"`
	Metadata     string      `yaml:"metadata"`
	Vocabularies []string    `yaml:"vocabularies,omitempty"`
	Overview     string      `yaml:"overview,omitempty"`
	KeyTerms     string      `yaml:"keyterms,omitempty"`
	Figures      []FigureRef `yaml:"figures,omitempty"`

	// Delimiter overrides the field separator of the data file.
	Delimiter string `yaml:"delimiter,omitempty"`

	// Output is the document path. Empty writes to stdout.
	Output string `yaml:"output,omitempty"`

	// Parquet is the data dictionary export path. Empty disables export.
	Parquet string `yaml:"parquet,omitempty"`

	Settings `yaml:",inline"`
}

// Validate checks a resolved job.
func (j Job) Validate() error {
	if j.Data == "" || j.Metadata == "" {
		if j.Name != "" {
			return fmt.Errorf("codebook %q: %w", j.Name, ErrNoInput)
		}
		return ErrNoInput
	}
	if err := j.Settings.Validate(); err != nil {
		return err
	}
	if j.TopN == 0 {
		return ErrInvalidTopN
	}
	if j.Concurrency == 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

// DatasetName returns the history key of the job: its name, or the data
// file name without extension for ad-hoc jobs.
func (j Job) DatasetName() string {
	if j.Name != "" {
		return j.Name
	}
	base := filepath.Base(j.Data)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// override returns j with the non-zero fields of o applied.
func (j Job) override(o Job) Job {
	if o.Title != "" {
		j.Title = o.Title
	}
	if o.Data != "" {
		j.Data = o.Data
	}
	if o.Metadata != "" {
		j.Metadata = o.Metadata
	}
	if len(o.Vocabularies) > 0 {
		j.Vocabularies = o.Vocabularies
	}
	if o.Overview != "" {
		j.Overview = o.Overview
	}
	if o.KeyTerms != "" {
		j.KeyTerms = o.KeyTerms
	}
	if len(o.Figures) > 0 {
		j.Figures = o.Figures
	}
	if o.Delimiter != "" {
		j.Delimiter = o.Delimiter
	}
	if o.Output != "" {
		j.Output = o.Output
	}
	if o.Parquet != "" {
		j.Parquet = o.Parquet
	}
	j.Settings = o.Settings.merge(j.Settings)
	return j
}

// resolve makes relative input and output paths relative to dir.
func (j Job) resolve(dir string) Job {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) || dir == "" {
			return p
		}
		return filepath.Join(dir, p)
	}
	j.Data = abs(j.Data)
	j.Metadata = abs(j.Metadata)
	j.Overview = abs(j.Overview)
	j.KeyTerms = abs(j.KeyTerms)
	j.Output = abs(j.Output)
	j.Parquet = abs(j.Parquet)

	vocabs := make([]string, len(j.Vocabularies))
	for i, v := range j.Vocabularies {
		vocabs[i] = abs(v)
	}
	j.Vocabularies = vocabs

	figures := make([]FigureRef, len(j.Figures))
	for i, f := range j.Figures {
		f.Path = abs(f.Path)
		figures[i] = f
	}
	j.Figures = figures
	return j
}

// PublishConfig configures artifact publishing. A bucket selects an
// S3-compatible store, a directory without endpoint a local store.
type PublishConfig struct {
	Endpoint     string `yaml:"endpoint,omitempty"`
	Bucket       string `yaml:"bucket,omitempty"`
	Region       string `yaml:"region,omitempty"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	UseSSL       bool   `yaml:"use_ssl,omitempty"`
	CreateBucket bool   `yaml:"create_bucket,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	Dir          string `yaml:"dir,omitempty"`
}

// Enabled reports whether a publish target is configured.
func (p PublishConfig) Enabled() bool {
	return p.Bucket != "" || p.Dir != ""
}

// IsLocal reports whether artifacts go to a local directory.
func (p PublishConfig) IsLocal() bool {
	return p.Bucket == "" && p.Dir != ""
}

// HistoryConfig configures the build history database.
type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// File represents the structure of the .codebook.yaml project file.
type File struct {
	// Defaults apply to every job unless overridden.
	Defaults Settings `yaml:"defaults,omitempty"`

	Jobs    []Job         `yaml:"codebooks,omitempty"`
	Publish PublishConfig `yaml:"publish,omitempty"`
	History HistoryConfig `yaml:"history,omitempty"`

	// dir is the directory of the file, used to resolve relative paths.
	dir string
}

// GetJob returns the named job with project defaults and built-in
// defaults applied and relative paths resolved.
func (f *File) GetJob(name string) (Job, error) {
	for _, j := range f.Jobs {
		if j.Name != name {
			continue
		}
		j.Settings = j.Settings.merge(f.Defaults.merge(DefaultSettings()))
		return j.resolve(f.dir), nil
	}
	return Job{}, fmt.Errorf("%w: %q", ErrJobNotFound, name)
}

// JobNames lists the declared jobs in file order.
func (f *File) JobNames() []string {
	names := make([]string, 0, len(f.Jobs))
	for _, j := range f.Jobs {
		names = append(names, j.Name)
	}
	return names
}

// expandEnv substitutes ${VAR} references in credentials so secrets need
// not be stored in the file.
func (p *PublishConfig) expandEnv() {
	p.AccessKey = os.ExpandEnv(p.AccessKey)
	p.SecretKey = os.ExpandEnv(p.SecretKey)
	p.Endpoint = os.ExpandEnv(p.Endpoint)
}

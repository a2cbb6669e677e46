package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/nao1215/codebook/internal/codebook"
	"github.com/nao1215/codebook/internal/config"
	"github.com/nao1215/codebook/internal/figure"
	"github.com/nao1215/codebook/internal/ingest"
	"github.com/nao1215/codebook/internal/metadata"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/narrative"
)

// LoadInputs reads every input file a job names. Vocabularies declared in
// the metadata file are merged with the job's vocabulary files; the files
// win on conflicting names.
func LoadInputs(job config.Job, loader *figure.Loader) (codebook.Input, error) {
	in := codebook.Input{Title: job.Title}
	if in.Title == "" {
		in.Title = job.DatasetName()
	}

	md, inline, err := metadata.Load(job.Metadata)
	if err != nil {
		return in, err
	}
	in.Metadata = md

	sets := []model.Vocabularies{inline}
	for _, path := range job.Vocabularies {
		v, err := metadata.LoadVocabularies(path)
		if err != nil {
			return in, err
		}
		sets = append(sets, v)
	}
	in.Vocabularies = metadata.Merge(sets...)

	opts, err := csvOptions(job.Delimiter)
	if err != nil {
		return in, err
	}
	table, err := ingest.LoadCSV(job.Data, opts)
	if err != nil {
		return in, err
	}
	in.Table = table

	if job.Overview != "" {
		if in.Overview, err = narrative.Load(job.Overview); err != nil {
			return in, err
		}
	}
	if job.KeyTerms != "" {
		if in.KeyTerms, err = narrative.Load(job.KeyTerms); err != nil {
			return in, err
		}
	}

	if len(job.Figures) > 0 {
		if loader == nil {
			loader = figure.NewLoader()
		}
		sources := make([]figure.Source, 0, len(job.Figures))
		for _, f := range job.Figures {
			sources = append(sources, figure.Source{Path: f.Path, Caption: f.Caption, Order: f.Order})
		}
		if in.Figures, err = loader.LoadAll(sources); err != nil {
			return in, err
		}
	}

	return in, nil
}

// csvOptions converts a delimiter setting. "tab" and "\t" both select a
// tab.
func csvOptions(delimiter string) (ingest.Options, error) {
	switch delimiter {
	case "":
		return ingest.Options{}, nil
	case "tab", `\t`:
		return ingest.Options{Comma: '\t'}, nil
	}
	r, size := utf8.DecodeRuneInString(delimiter)
	if size != len(delimiter) || r == utf8.RuneError {
		return ingest.Options{}, fmt.Errorf("invalid delimiter %q: must be a single character", delimiter)
	}
	return ingest.Options{Comma: r}, nil
}

// PolicyFor converts job settings into an assembler policy.
func PolicyFor(job config.Job) codebook.Policy {
	p := codebook.DefaultPolicy()
	if job.TopN > 0 {
		p.TopN = job.TopN
	}
	if job.CardinalityThreshold > 0 {
		p.CardinalityThreshold = job.CardinalityThreshold
	}
	if job.OtherLabel != "" {
		p.OtherLabel = job.OtherLabel
	}
	if job.DataDictionary != nil {
		p.DataDictionary = *job.DataDictionary
	}
	if job.PageBreakPerVariable != nil {
		p.PageBreakPerVariable = *job.PageBreakPerVariable
	}
	if job.Seed != 0 {
		p.Stats.Seed = job.Seed
	}
	if len(job.DateLayouts) > 0 {
		p.Stats.DateLayouts = job.DateLayouts
	}
	return p
}

// Package vocab maps observed codes to human-readable labels.
package vocab

import (
	"fmt"

	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
)

// UnmappedMarker is appended to the label of a code that has no entry in
// the controlled vocabulary or code set.
const UnmappedMarker = "(unmapped)"

// Label is the resolved display text of one code.
type Label struct {
	Code string `json:"code"`
	Text string `json:"text"`

	// Mapped is false when a vocabulary or code set exists but does not
	// contain the code. The raw code is shown instead.
	Mapped bool `json:"mapped"`
}

// Display returns the label as it appears in a codebook.
func (l Label) Display() string {
	if l.Mapped {
		return l.Text
	}
	return l.Text + " " + UnmappedMarker
}

// Resolution is the label mapping for one column.
type Resolution struct {
	// Labels holds one label per observed code, in frequency order.
	Labels []Label `json:"labels"`

	// Unobserved lists declared codes that never occur in the data, in
	// declaration order.
	Unobserved []Label `json:"unobserved,omitempty"`

	index map[string]int
}

// Lookup returns the label of an observed code.
func (r Resolution) Lookup(code string) (Label, bool) {
	i, ok := r.index[code]
	if !ok {
		return Label{}, false
	}
	return r.Labels[i], true
}

// Unmapped returns the observed codes that could not be labelled.
func (r Resolution) Unmapped() []string {
	var out []string
	for _, l := range r.Labels {
		if !l.Mapped {
			out = append(out, l.Code)
		}
	}
	return out
}

// Resolver resolves codes against a set of controlled vocabularies.
type Resolver struct {
	vocabularies model.Vocabularies
}

// NewResolver returns a Resolver over vocabularies.
func NewResolver(vocabularies model.Vocabularies) *Resolver {
	return &Resolver{vocabularies: vocabularies}
}

// Check verifies that every vocabulary referenced by metadata is known.
func (r *Resolver) Check(metadata *model.MetadataModel) error {
	for _, spec := range metadata.Specs() {
		if spec.VocabularyRef == "" {
			continue
		}
		if _, ok := r.vocabularies.Lookup(spec.VocabularyRef); !ok {
			return model.NewConfigurationError(
				fmt.Sprintf("column %q references vocabulary %q", spec.Name, spec.VocabularyRef),
				model.ErrUnknownVocabulary)
		}
	}
	return nil
}

// Resolve labels every code in the summary's frequency table.
//
// Precedence is the referenced vocabulary, then the inline code label,
// then the raw code. A column with neither a vocabulary nor a code set
// resolves every code to itself. Unresolved codes are kept and marked.
func (r *Resolver) Resolve(summary stats.Summary, spec model.ColumnSpec) (Resolution, error) {
	var voc model.Vocabulary
	if spec.VocabularyRef != "" {
		v, ok := r.vocabularies.Lookup(spec.VocabularyRef)
		if !ok {
			return Resolution{}, model.NewConfigurationError(
				fmt.Sprintf("column %q references vocabulary %q", spec.Name, spec.VocabularyRef),
				model.ErrUnknownVocabulary)
		}
		voc = v
	}
	codes, hasCodes := spec.CodeSet()
	controlled := voc != nil || hasCodes

	res := Resolution{
		Labels: make([]Label, 0, len(summary.Frequencies)),
		index:  make(map[string]int, len(summary.Frequencies)),
	}
	for _, f := range summary.Frequencies {
		res.index[f.Value] = len(res.Labels)
		res.Labels = append(res.Labels, label(f.Value, voc, codes, controlled))
	}
	for _, c := range codes {
		if _, seen := res.index[c.Value]; !seen {
			res.Unobserved = append(res.Unobserved, label(c.Value, voc, codes, controlled))
		}
	}
	return res, nil
}

func label(code string, voc model.Vocabulary, codes model.CodeSet, controlled bool) Label {
	if text, ok := voc[code]; ok {
		return Label{Code: code, Text: text, Mapped: true}
	}
	if c, ok := codes.Lookup(code); ok {
		text := c.Label
		if text == "" {
			text = code
		}
		return Label{Code: code, Text: text, Mapped: true}
	}
	return Label{Code: code, Text: code, Mapped: !controlled}
}

package codebook

import (
	"github.com/nao1215/codebook/internal/layout"
	"github.com/nao1215/codebook/internal/model"
	"github.com/nao1215/codebook/internal/stats"
	"github.com/nao1215/codebook/internal/validate"
	"github.com/nao1215/codebook/internal/vocab"
)

// Block is one piece of pre-rendered narrative: a subheading, a paragraph,
// or both.
type Block struct {
	Heading string
	// Level is the subheading depth inside the section, starting at 1.
	Level int
	Text  string
}

// Narrative is a pre-rendered narrative section such as a project overview.
type Narrative struct {
	Title  string
	Blocks []Block
}

// IsEmpty reports whether the section has no content.
func (n *Narrative) IsEmpty() bool {
	return n == nil || (n.Title == "" && len(n.Blocks) == 0)
}

// Figure is a ready-made image with its caption.
type Figure struct {
	Data    []byte
	Caption string
	Format  string

	// Order is the placement index. Figures are emitted in ascending
	// order; ties keep their input order.
	Order int
}

// Input is everything needed for one build.
type Input struct {
	Title        string
	Metadata     *model.MetadataModel
	Table        *model.Table
	Overview     *Narrative
	KeyTerms     *Narrative
	Figures      []Figure
	Vocabularies model.Vocabularies
}

// Entry is the renderable unit for one declared variable.
type Entry struct {
	Spec       model.ColumnSpec
	Summary    stats.Summary
	Resolution vocab.Resolution

	// Exclusion is set when a validation error removed the variable.
	Exclusion *validate.Issue
}

// Excluded reports whether the entry is rendered as a placeholder.
func (e Entry) Excluded() bool {
	return e.Exclusion != nil
}

// Result is the output of a successful build.
type Result struct {
	Document *layout.Document
	Report   *validate.Report
	Entries  []Entry

	// Digest is the SHA3-256 of the document's canonical encoding.
	Digest string

	// Phases lists the phases entered, in order.
	Phases []Phase
}

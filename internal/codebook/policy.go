package codebook

import (
	"github.com/nao1215/codebook/internal/stats"
)

// Default policy values.
const (
	// DefaultTopN is the number of frequency rows kept when a categorical
	// table is truncated.
	DefaultTopN = 20

	// DefaultCardinalityThreshold is the distinct-value count above which a
	// categorical frequency table is truncated.
	DefaultCardinalityThreshold = 20

	// DefaultConcurrency bounds the number of columns summarized at once.
	DefaultConcurrency = 4

	// DefaultOtherLabel names the aggregate row of a truncated table.
	DefaultOtherLabel = "Other"
)

// Policy holds the tunable presentation rules of the Assembler.
type Policy struct {
	// TopN is the number of most frequent values rendered for a
	// high-cardinality categorical variable.
	TopN int

	// CardinalityThreshold triggers truncation when a categorical variable
	// has more distinct values than this. Zero disables truncation.
	CardinalityThreshold int

	// OtherLabel is the code shown on the aggregate row.
	OtherLabel string

	// DataDictionary adds the variable overview table before the entries.
	DataDictionary bool

	// PageBreakPerVariable starts every variable entry on a new page.
	PageBreakPerVariable bool

	// Stats is passed to stats.Summarize for every column.
	Stats stats.Options
}

// DefaultPolicy returns the policy used when none is given.
func DefaultPolicy() Policy {
	return Policy{
		TopN:                 DefaultTopN,
		CardinalityThreshold: DefaultCardinalityThreshold,
		OtherLabel:           DefaultOtherLabel,
		DataDictionary:       true,
		PageBreakPerVariable: true,
		Stats:                stats.DefaultOptions(),
	}
}

// truncates reports whether a frequency table with distinct rows is cut.
// A table is only cut when it exceeds both the threshold and TopN.
func (p Policy) truncates(distinct int) bool {
	return p.CardinalityThreshold > 0 && p.TopN > 0 &&
		distinct > p.CardinalityThreshold && distinct > p.TopN
}

package layout

// Kind names an instruction variant in serialized form.
type Kind string

// Instruction kinds.
const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindImage     Kind = "image"
	KindPageBreak Kind = "page_break"
)

// Instruction is one step of a Document. The set of implementations is
// closed: Heading, Paragraph, Table, Image, and PageBreak.
type Instruction interface {
	Kind() Kind
	instruction()
}

// Heading starts a section. Level 1 is the largest.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Paragraph is a block of running text.
type Paragraph struct {
	Text string `json:"text"`
}

// TableRole tells a renderer what a table holds, so it can choose a
// presentation (for example a chart next to a frequency table).
type TableRole string

// Table roles.
const (
	RoleDictionary TableRole = "dictionary"
	RoleStatistics TableRole = "statistics"
	RoleFrequency  TableRole = "frequency"
	RoleIssues     TableRole = "issues"
)

// Slice is one wedge of a chart attached to a table.
type Slice struct {
	Label string `json:"label"`
	Value uint64 `json:"value"`
}

// Table is a grid of cells with a header row. Every row has len(Headers)
// cells.
type Table struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Role    TableRole  `json:"role,omitempty"`

	// Chart optionally carries the numeric series behind a frequency table.
	Chart []Slice `json:"chart,omitempty"`
}

// Image is a raster figure with its caption.
type Image struct {
	Data    []byte `json:"data"`
	Caption string `json:"caption"`

	// Format is the lower-case file format ("png", "jpeg", ...).
	Format string `json:"format"`
}

// PageBreak ends the current page.
type PageBreak struct{}

func (Heading) Kind() Kind   { return KindHeading }
func (Paragraph) Kind() Kind { return KindParagraph }
func (Table) Kind() Kind     { return KindTable }
func (Image) Kind() Kind     { return KindImage }
func (PageBreak) Kind() Kind { return KindPageBreak }

func (Heading) instruction()   {}
func (Paragraph) instruction() {}
func (Table) instruction()     {}
func (Image) instruction()     {}
func (PageBreak) instruction() {}

package layout

// Builder accumulates instructions privately. Nothing is visible to a
// caller until Document is called.
type Builder struct {
	title        string
	instructions []Instruction
}

// NewBuilder returns an empty Builder for a document titled title.
func NewBuilder(title string) *Builder {
	return &Builder{title: title}
}

// Heading appends a heading.
func (b *Builder) Heading(text string, level int) {
	b.instructions = append(b.instructions, Heading{Text: text, Level: level})
}

// Paragraph appends a paragraph. Empty text is ignored.
func (b *Builder) Paragraph(text string) {
	if text == "" {
		return
	}
	b.instructions = append(b.instructions, Paragraph{Text: text})
}

// Table appends a table.
func (b *Builder) Table(t Table) {
	b.instructions = append(b.instructions, t)
}

// Image appends an image.
func (b *Builder) Image(img Image) {
	b.instructions = append(b.instructions, img)
}

// PageBreak appends a page break unless the stream is empty or already
// ends with one.
func (b *Builder) PageBreak() {
	if len(b.instructions) == 0 {
		return
	}
	if _, ok := b.instructions[len(b.instructions)-1].(PageBreak); ok {
		return
	}
	b.instructions = append(b.instructions, PageBreak{})
}

// Len returns the number of instructions so far.
func (b *Builder) Len() int {
	return len(b.instructions)
}

// Document returns the accumulated document.
func (b *Builder) Document() *Document {
	out := make([]Instruction, len(b.instructions))
	copy(out, b.instructions)
	return &Document{Title: b.title, Instructions: out}
}

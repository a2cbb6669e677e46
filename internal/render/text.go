package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/codebook/internal/layout"
)

// TextRenderer outputs documents as plain text for terminal display.
// Tables are padded into aligned columns and page breaks become a dashed
// separator.
type TextRenderer struct {
	baseRenderer

	sb     strings.Builder
	images int
}

// NewTextRenderer creates a TextRenderer that outputs to the given writer.
func NewTextRenderer(output io.Writer, opts ...Option) *TextRenderer {
	return &TextRenderer{
		baseRenderer: newBaseRenderer(output, opts),
	}
}

// Render outputs the document in plain text.
func (r *TextRenderer) Render(doc *layout.Document) error {
	r.sb.Reset()
	r.images = 0

	width := r.opts.pageSepWidth
	if doc != nil && doc.Title != "" {
		r.sb.WriteString(strings.Repeat("=", width))
		r.sb.WriteString("\n")
		r.sb.WriteString(center(strings.ToUpper(doc.Title), width))
		r.sb.WriteString("\n")
		r.sb.WriteString(strings.Repeat("=", width))
		r.sb.WriteString("\n\n")
	}

	if err := layout.Replay(doc, r); err != nil {
		return err
	}

	if r.opts.footer != "" {
		r.sb.WriteString(strings.Repeat("=", width))
		r.sb.WriteString("\n")
		r.sb.WriteString(r.opts.footer)
		r.sb.WriteString("\n")
	}

	if _, err := io.WriteString(r.output, r.sb.String()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}

// AddHeading writes a heading. Level 1 headings are upper-cased and
// underlined.
func (r *TextRenderer) AddHeading(text string, level int) error {
	if level <= 1 {
		text = strings.ToUpper(text)
		r.sb.WriteString(text)
		r.sb.WriteString("\n")
		r.sb.WriteString(strings.Repeat("-", utf8.RuneCountInString(text)))
		r.sb.WriteString("\n\n")
		return nil
	}
	r.sb.WriteString(text)
	r.sb.WriteString("\n\n")
	return nil
}

// AddParagraph writes a paragraph.
func (r *TextRenderer) AddParagraph(text string) error {
	r.sb.WriteString(text)
	r.sb.WriteString("\n\n")
	return nil
}

// AddTable writes an aligned table.
func (r *TextRenderer) AddTable(t layout.Table) error {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("table %q: row has %d cells, expected %d", t.Title, len(row), len(t.Headers))
		}
		for i, c := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	r.writeRow(t.Headers, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	r.writeRow(sep, widths)
	for _, row := range t.Rows {
		r.writeRow(row, widths)
	}
	r.sb.WriteString("\n")
	return nil
}

func (r *TextRenderer) writeRow(cells []string, widths []int) {
	r.sb.WriteString("  ")
	for i, c := range cells {
		if i > 0 {
			r.sb.WriteString("  ")
		}
		r.sb.WriteString(c)
		if i < len(cells)-1 {
			r.sb.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
		}
	}
	r.sb.WriteString("\n")
}

// AddImage writes a placeholder line; text output cannot show images.
func (r *TextRenderer) AddImage(img layout.Image) error {
	r.images++
	fmt.Fprintf(&r.sb, "[Figure %d: %s (%s, %d bytes)]\n\n", r.images, img.Caption, img.Format, len(img.Data))
	return nil
}

// NewPage writes a page separator.
func (r *TextRenderer) NewPage() error {
	r.sb.WriteString(strings.Repeat("-", r.opts.pageSepWidth))
	r.sb.WriteString("\n\n")
	return nil
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

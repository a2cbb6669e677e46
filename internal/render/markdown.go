package render

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/nao1215/codebook/internal/layout"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownRenderer outputs documents as GitHub-flavored markdown.
// Page breaks become horizontal rules. Frequency tables that carry chart
// data are followed by a mermaid pie chart.
type MarkdownRenderer struct {
	baseRenderer

	md     *markdown.Markdown
	images int
}

// NewMarkdownRenderer creates a MarkdownRenderer that outputs to the given writer.
func NewMarkdownRenderer(output io.Writer, opts ...Option) *MarkdownRenderer {
	return &MarkdownRenderer{
		baseRenderer: newBaseRenderer(output, opts),
	}
}

// Render outputs the document in markdown format.
func (r *MarkdownRenderer) Render(doc *layout.Document) error {
	r.md = markdown.NewMarkdown(r.output)
	r.images = 0

	if doc != nil && doc.Title != "" {
		r.md.H1(doc.Title)
		r.md.PlainText("")
	}
	if r.opts.toc {
		r.writeTableOfContents(doc)
	}

	if err := layout.Replay(doc, r); err != nil {
		return err
	}

	r.writeFooter()
	return r.md.Build()
}

func (r *MarkdownRenderer) writeTableOfContents(doc *layout.Document) {
	entries := doc.Headings(2)
	if len(entries) == 0 {
		return
	}
	items := make([]string, 0, len(entries))
	for _, h := range entries {
		indent := strings.Repeat("  ", h.Level-1)
		items = append(items, fmt.Sprintf("%s[%s](#%s)", indent, h.Text, anchor(h.Text)))
	}
	r.md.H2("Contents")
	r.md.PlainText("")
	r.md.BulletList(items...)
	r.md.PlainText("")
}

// AddHeading writes a heading. The document title already uses H1, so
// level 1 maps to H2.
func (r *MarkdownRenderer) AddHeading(text string, level int) error {
	switch {
	case level <= 1:
		r.md.H2(text)
	default:
		r.md.PlainText(strings.Repeat("#", min(level+1, 6)) + " " + text)
	}
	r.md.PlainText("")
	return nil
}

// AddParagraph writes a paragraph.
func (r *MarkdownRenderer) AddParagraph(text string) error {
	r.md.PlainText(text)
	r.md.PlainText("")
	return nil
}

// AddTable writes a table and, for frequency tables, a pie chart.
func (r *MarkdownRenderer) AddTable(t layout.Table) error {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = escapeCell(c)
		}
		rows[i] = cells
	}
	r.md.Table(markdown.TableSet{
		Header: t.Headers,
		Rows:   rows,
	})
	r.md.PlainText("")

	if t.Role == layout.RoleFrequency && len(t.Chart) > 1 {
		r.writePieChart(t)
	}
	if t.Role == layout.RoleIssues && len(t.Rows) > 0 {
		r.md.Warningf("%d data quality issue(s) were found while validating the metadata.", len(t.Rows))
		r.md.PlainText("")
	}
	return nil
}

func (r *MarkdownRenderer) writePieChart(t layout.Table) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(t.Title),
		piechart.WithShowData(true),
	)
	for _, s := range t.Chart {
		chart.LabelAndIntValue(s.Label, s.Value)
	}
	r.md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	r.md.PlainText("")
}

// AddImage embeds an image, either inline as a data URI or through the
// configured asset writer.
func (r *MarkdownRenderer) AddImage(img layout.Image) error {
	r.images++
	format := img.Format
	if format == "" {
		format = "png"
	}

	var ref string
	if r.opts.assets != nil {
		name := fmt.Sprintf("figure-%d.%s", r.images, format)
		var err error
		ref, err = r.opts.assets.WriteAsset(name, img.Data)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", name, err)
		}
	} else {
		ref = "data:" + mimeType(format) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	}

	r.md.PlainTextf("![%s](%s)", img.Caption, ref)
	r.md.PlainText("")
	r.md.PlainTextf("*Figure %d: %s*", r.images, img.Caption)
	r.md.PlainText("")
	return nil
}

// NewPage writes a horizontal rule.
func (r *MarkdownRenderer) NewPage() error {
	r.md.HorizontalRule()
	r.md.PlainText("")
	return nil
}

func (r *MarkdownRenderer) writeFooter() {
	if r.opts.footer == "" {
		return
	}
	r.md.PlainTextf("*%s*", r.opts.footer)
}

// anchor converts heading text to a GitHub-style fragment.
func anchor(text string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(c), unicode.IsDigit(c), c == '-', c == '_':
			sb.WriteRune(c)
		case c == ' ':
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func mimeType(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

package narrative

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/codebook/internal/charset"
	"github.com/nao1215/codebook/internal/codebook"
)

// Load reads a narrative file. The parser is chosen by extension: .html
// and .htm use the HTML parser, everything else is treated as markdown.
func Load(path string) (*codebook.Narrative, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided narrative path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative file: %w", err)
	}
	data, err := charset.ToUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseHTML(bytes.NewReader(data))
	default:
		return ParseMarkdown(string(data)), nil
	}
}

// section collects blocks while a document is walked. The first level-1
// heading becomes the section title.
type section struct {
	n         codebook.Narrative
	paragraph strings.Builder
}

func (s *section) heading(text string, level int) {
	s.flush()
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if level == 1 && s.n.Title == "" && len(s.n.Blocks) == 0 {
		s.n.Title = text
		return
	}
	s.n.Blocks = append(s.n.Blocks, codebook.Block{Heading: text, Level: level})
}

// text appends raw text to the open paragraph. Whitespace is normalized
// when the paragraph is flushed.
func (s *section) text(raw string) {
	s.paragraph.WriteString(raw)
}

// flush closes the current paragraph. Text directly after a subheading is
// attached to that heading's block.
func (s *section) flush() {
	text := strings.Join(strings.Fields(s.paragraph.String()), " ")
	s.paragraph.Reset()
	if text == "" {
		return
	}
	if n := len(s.n.Blocks); n > 0 && s.n.Blocks[n-1].Text == "" && s.n.Blocks[n-1].Heading != "" {
		s.n.Blocks[n-1].Text = text
		return
	}
	s.n.Blocks = append(s.n.Blocks, codebook.Block{Text: text})
}

func (s *section) result() *codebook.Narrative {
	s.flush()
	return &s.n
}

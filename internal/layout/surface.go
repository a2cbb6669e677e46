package layout

import (
	"fmt"

	"github.com/nao1215/codebook/internal/model"
)

// Surface is a drawing target for a Document. Implementations turn each
// call into concrete output (markdown, plain text, a PDF page, ...).
type Surface interface {
	AddHeading(text string, level int) error
	AddParagraph(text string) error
	AddTable(t Table) error
	AddImage(img Image) error
	NewPage() error
}

// Replay draws every instruction of doc onto s in order. The first
// surface failure stops the replay and is returned as a
// *model.RenderingError naming the instruction index.
func Replay(doc *Document, s Surface) error {
	if doc == nil {
		return &model.RenderingError{Index: -1, Err: fmt.Errorf("nil document")}
	}
	for i, ins := range doc.Instructions {
		var err error
		switch v := ins.(type) {
		case Heading:
			err = s.AddHeading(v.Text, v.Level)
		case Paragraph:
			err = s.AddParagraph(v.Text)
		case Table:
			err = s.AddTable(v)
		case Image:
			err = s.AddImage(v)
		case PageBreak:
			err = s.NewPage()
		default:
			err = fmt.Errorf("unknown instruction %T", ins)
		}
		if err != nil {
			return &model.RenderingError{Index: i, Err: err}
		}
	}
	return nil
}

package render

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/nao1215/codebook/internal/layout"
)

// JSONRenderer outputs the instruction stream as JSON for tool
// integration. Images are base64 encoded.
type JSONRenderer struct {
	baseRenderer
}

// NewJSONRenderer creates a JSONRenderer that outputs to the given writer.
func NewJSONRenderer(output io.Writer, opts ...Option) *JSONRenderer {
	return &JSONRenderer{baseRenderer: newBaseRenderer(output, opts)}
}

// jsonDocument wraps the document with its digest and footer.
type jsonDocument struct {
	Digest   string          `json:"digest"`
	Footer   string          `json:"footer,omitempty"`
	Document layout.Document `json:"document"`
}

// Render outputs the document in JSON format.
func (r *JSONRenderer) Render(doc *layout.Document) error {
	if doc == nil {
		return fmt.Errorf("nil document")
	}
	digest, err := doc.Digest()
	if err != nil {
		return err
	}
	return writeJSON(r.output, jsonDocument{Digest: digest, Footer: r.opts.footer, Document: *doc}, r.opts.indent)
}

// writeJSON marshals v and writes it with a trailing newline.
func writeJSON(w io.Writer, v any, indent string) error {
	var data []byte
	var err error
	if indent != "" {
		data, err = json.MarshalIndent(v, "", indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

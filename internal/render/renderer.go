package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/codebook/internal/layout"
)

// Format names an output format.
type Format string

// Supported formats.
const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use markdown, text, or json", s)
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	default:
		return ".md"
	}
}

// Renderer writes a document to its configured destination.
type Renderer interface {
	Render(doc *layout.Document) error
}

// New returns the renderer for format writing to output.
func New(format Format, output io.Writer, opts ...Option) (Renderer, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownRenderer(output, opts...), nil
	case FormatText:
		return NewTextRenderer(output, opts...), nil
	case FormatJSON:
		return NewJSONRenderer(output, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// MultiRenderer renders the same document with several renderers.
type MultiRenderer struct {
	renderers []Renderer
}

// NewMultiRenderer creates a Renderer that renders with all given renderers.
func NewMultiRenderer(renderers ...Renderer) *MultiRenderer {
	return &MultiRenderer{renderers: renderers}
}

// Render renders with each renderer in turn and stops on the first error.
func (m *MultiRenderer) Render(doc *layout.Document) error {
	for _, r := range m.renderers {
		if err := r.Render(doc); err != nil {
			return err
		}
	}
	return nil
}

// options are shared by all renderers.
type options struct {
	footer       string
	indent       string
	assets       AssetWriter
	toc   bool
	pageSepWidth int
}

// Option configures a renderer.
type Option func(*options)

// WithFooter sets the line printed at the end of the document, typically
// "<output> | Generated: <timestamp>".
func WithFooter(footer string) Option {
	return func(o *options) {
		o.footer = footer
	}
}

// WithPrettyPrint indents JSON output with two spaces.
func WithPrettyPrint() Option {
	return func(o *options) {
		o.indent = "  "
	}
}

// WithAssetWriter stores images through w and links them by the returned
// reference instead of embedding them inline.
func WithAssetWriter(w AssetWriter) Option {
	return func(o *options) {
		o.assets = w
	}
}

// WithTableOfContents toggles the markdown table of contents.
func WithTableOfContents(enabled bool) Option {
	return func(o *options) {
		o.toc = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{toc: true, pageSepWidth: 72}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AssetWriter persists an image and returns the reference used to link it.
type AssetWriter interface {
	WriteAsset(name string, data []byte) (string, error)
}

// baseRenderer holds the destination shared by all renderers.
type baseRenderer struct {
	output io.Writer
	opts   options
}

func newBaseRenderer(output io.Writer, opts []Option) baseRenderer {
	return baseRenderer{output: output, opts: newOptions(opts)}
}

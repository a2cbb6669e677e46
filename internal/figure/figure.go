package figure

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nao1215/codebook/internal/codebook"
)

// AllowedFormats lists the accepted file extensions without the dot.
var AllowedFormats = []string{"png", "jpg", "jpeg", "bmp", "gif", "tif", "tiff"}

// Source describes one figure to load.
type Source struct {
	Path    string `yaml:"path"`
	Caption string `yaml:"caption"`
	Order   int    `yaml:"order"`
}

// Loader reads figures from disk.
type Loader struct {
	logger *slog.Logger
	strict bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for metadata warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithStrictMetadata makes sensitive EXIF metadata a load error instead of
// a logged warning.
func WithStrictMetadata(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads a single figure. When the caption is empty the file name
// without extension is used.
func (l *Loader) Load(src Source) (codebook.Figure, error) {
	format, err := FormatOf(src.Path)
	if err != nil {
		return codebook.Figure{}, err
	}

	data, err := os.ReadFile(src.Path) //nolint:gosec // User-provided figure path is intentional
	if err != nil {
		return codebook.Figure{}, fmt.Errorf("failed to read figure: %w", err)
	}
	if len(data) == 0 {
		return codebook.Figure{}, fmt.Errorf("%s: %w", src.Path, ErrEmptyFigure)
	}
	if sniffed := sniff(data); sniffed != "" && sniffed != family(format) {
		return codebook.Figure{}, fmt.Errorf("%s: %w (content is %s)", src.Path, ErrFormatMismatch, sniffed)
	}

	findings := Scan(data)
	for _, f := range findings {
		l.logger.Warn("figure carries sensitive metadata",
			"path", src.Path,
			"category", string(f.Category),
			"tag", f.Tag,
		)
	}
	if l.strict && len(findings) > 0 {
		return codebook.Figure{}, fmt.Errorf("%s: %w", src.Path, &MetadataError{Findings: findings})
	}

	caption := src.Caption
	if caption == "" {
		caption = strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	}

	return codebook.Figure{
		Data:    data,
		Caption: caption,
		Format:  format,
		Order:   src.Order,
	}, nil
}

// LoadAll loads every source in order and stops at the first failure.
func (l *Loader) LoadAll(sources []Source) ([]codebook.Figure, error) {
	figures := make([]codebook.Figure, 0, len(sources))
	for _, src := range sources {
		fig, err := l.Load(src)
		if err != nil {
			return nil, err
		}
		figures = append(figures, fig)
	}
	return figures, nil
}

// FormatOf returns the lower-cased extension of path when it is an
// allowed figure format.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(AllowedFormats, ext) {
		return "", fmt.Errorf("%s: %w (allowed: %s)", path, ErrUnsupportedFormat, strings.Join(AllowedFormats, ", "))
	}
	return ext, nil
}

func family(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	default:
		return format
	}
}

// sniff identifies an image by its magic bytes. An empty result means the
// content is not recognized and is left to the renderer.
func sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	default:
		return ""
	}
}

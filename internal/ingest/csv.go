// Package ingest loads delimited data files into a model.Table.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/codebook/internal/charset"
	"github.com/nao1215/codebook/internal/model"
)

// Options controls how a delimited file is read.
type Options struct {
	// Comma is the field delimiter. When zero it is chosen from the file
	// extension: tab for .tsv/.tab, comma otherwise.
	Comma rune

	// Comment, if not zero, marks lines to skip.
	Comment rune
}

// LoadCSV reads a delimited file with a header row.
func LoadCSV(path string, opts Options) (*model.Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided data path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if opts.Comma == 0 {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tsv", ".tab":
			opts.Comma = '\t'
		}
	}
	t, err := ReadCSV(bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads delimited data with a header row from r. Every cell is kept
// as raw text; blank cells become empty values.
func ReadCSV(r io.Reader, opts Options) (*model.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, err := charset.ToUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.Comment = opts.Comment

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.NewConfigurationError("data file is empty", model.ErrEmptyTable)
	}
	if err != nil {
		return nil, model.NewConfigurationError("invalid header row", err)
	}

	columns := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, model.NewConfigurationError("invalid data row", errors.Join(model.ErrMalformedTable, err))
		}
		for i := range columns {
			columns[i] = append(columns[i], rec[i])
		}
	}

	cols := make([]model.Column, len(header))
	for i, name := range header {
		cols[i] = model.Column{Name: strings.TrimSpace(name), Values: model.Strings(columns[i]...)}
	}
	return model.NewTable(cols...)
}

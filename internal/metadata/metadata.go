package metadata

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/codebook/internal/model"
	"gopkg.in/yaml.v3"
)

// Load reads a metadata file. Vocabularies declared inline under a
// top-level "vocabularies" key are returned alongside the model.
func Load(path string) (*model.MetadataModel, model.Vocabularies, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided metadata path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	m, v, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, v, nil
}

// Parse decodes metadata from YAML.
//
// Two layouts are accepted: a mapping from column name to column record,
// or a document with "columns" and optional "vocabularies" keys.
func Parse(data []byte) (*model.MetadataModel, model.Vocabularies, error) {
	root, err := documentRoot(data)
	if err != nil {
		return nil, nil, err
	}

	columns := root
	var vocabularies model.Vocabularies
	if c := lookup(root, "columns"); c != nil {
		columns = c
		if v := lookup(root, "vocabularies"); v != nil {
			if vocabularies, err = decodeVocabularies(v); err != nil {
				return nil, nil, err
			}
		}
	}
	if columns.Kind != yaml.MappingNode {
		return nil, nil, malformed(columns, "columns must be a mapping from column name to record")
	}

	m, err := model.NewMetadataModel()
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i+1 < len(columns.Content); i += 2 {
		spec, err := decodeSpec(columns.Content[i], columns.Content[i+1])
		if err != nil {
			return nil, nil, err
		}
		if err := m.Add(spec); err != nil {
			return nil, nil, err
		}
	}
	return m, vocabularies, nil
}

func documentRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, model.NewConfigurationError("invalid YAML", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, model.NewConfigurationError("empty document", model.ErrEmptyMetadata)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(root, "top level must be a mapping")
	}
	return root, nil
}

// normalizeKey folds case and drops separators so "MeasureUnit",
// "measure_unit", and "measure-unit" match.
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

// lookup returns the value of key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	want := normalizeKey(key)
	for i := 0; i+1 < len(m.Content); i += 2 {
		if normalizeKey(m.Content[i].Value) == want {
			return m.Content[i+1]
		}
	}
	return nil
}

func malformed(n *yaml.Node, reason string) error {
	return model.NewConfigurationError(fmt.Sprintf("line %d: %s", n.Line, reason), model.ErrMalformedSpec)
}

func decodeSpec(keyNode, rec *yaml.Node) (model.ColumnSpec, error) {
	name := strings.TrimSpace(keyNode.Value)
	spec := model.ColumnSpec{Name: name}
	if rec.Kind != yaml.MappingNode {
		return spec, malformed(rec, fmt.Sprintf("column %q: record must be a mapping", name))
	}

	typ, err := decodeType(name, rec)
	if err != nil {
		return spec, err
	}
	spec.Type = typ

	spec.Label = scalar(lookup(rec, "label"))
	spec.VocabularyRef = scalar(lookup(rec, "vocabulary_ref"))
	spec.AnalysisUnit = scalar(lookup(rec, "analysis_unit"))
	spec.MeasureUnit = scalar(lookup(rec, "measure_unit"))
	spec.Notes = strings.TrimSpace(scalar(lookup(rec, "notes")))

	if n := lookup(rec, "length"); n != nil {
		length, err := strconv.Atoi(n.Value)
		if err != nil || length < 0 {
			return spec, malformed(n, fmt.Sprintf("column %q: length must be a non-negative integer", name))
		}
		spec.Length = length
	}

	if n := lookup(rec, "missing_codes"); n != nil {
		codes, err := stringList(n)
		if err != nil {
			return spec, malformed(n, fmt.Sprintf("column %q: missing_codes must be a list", name))
		}
		spec.MissingCodes = codes
	}

	vv := lookup(rec, "valid_values")
	if vv == nil {
		vv = lookup(rec, "categories_dict")
	}
	if vv != nil {
		spec.ValidValues, err = decodeValidValues(name, typ, vv)
		if err != nil {
			return spec, err
		}
	}
	return spec, nil
}

// decodeType reads "type", falling back to "DataType". A true
// "categorical" flag overrides either.
func decodeType(name string, rec *yaml.Node) (model.DeclaredType, error) {
	n := lookup(rec, "type")
	if n == nil {
		n = lookup(rec, "data_type")
	}
	var typ model.DeclaredType
	if n != nil {
		t, err := model.ParseDeclaredType(n.Value)
		if err != nil {
			return "", malformed(n, fmt.Sprintf("column %q: %v", name, err))
		}
		typ = t
	}
	if c := lookup(rec, "categorical"); c != nil {
		var flag bool
		if err := c.Decode(&flag); err != nil {
			return "", malformed(c, fmt.Sprintf("column %q: categorical must be true or false", name))
		}
		if flag {
			typ = model.TypeCategorical
		}
	}
	if typ == "" {
		return "", malformed(rec, fmt.Sprintf("column %q: no type declared", name))
	}
	return typ, nil
}

func decodeValidValues(name string, typ model.DeclaredType, n *yaml.Node) (model.ValidValues, error) {
	switch {
	case n.Kind == yaml.MappingNode && typ == model.TypeContinuous:
		return decodeNumericRange(name, n)
	case n.Kind == yaml.MappingNode && typ == model.TypeDate:
		return decodeDateRange(name, n)
	case n.Kind == yaml.MappingNode:
		cs := make(model.CodeSet, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			cs = append(cs, model.Code{Value: n.Content[i].Value, Label: scalar(n.Content[i+1])})
		}
		return cs, nil
	case n.Kind == yaml.SequenceNode:
		cs := make(model.CodeSet, 0, len(n.Content))
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				cs = append(cs, model.Code{Value: item.Value})
			case yaml.MappingNode:
				v := lookup(item, "value")
				if v == nil {
					v = lookup(item, "code")
				}
				if v == nil {
					return nil, malformed(item, fmt.Sprintf("column %q: code entry needs a value", name))
				}
				cs = append(cs, model.Code{Value: v.Value, Label: scalar(lookup(item, "label"))})
			default:
				return nil, malformed(item, fmt.Sprintf("column %q: invalid code entry", name))
			}
		}
		return cs, nil
	default:
		return nil, malformed(n, fmt.Sprintf("column %q: valid_values must be a list or mapping", name))
	}
}

func decodeNumericRange(name string, n *yaml.Node) (model.ValidValues, error) {
	var r model.NumericRange
	for key, dst := range map[string]**float64{"min": &r.Min, "max": &r.Max} {
		b := lookup(n, key)
		if b == nil {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(b.Value), 64)
		if err != nil {
			return nil, malformed(b, fmt.Sprintf("column %q: range %s must be a number", name, key))
		}
		*dst = &f
	}
	return r, nil
}

func decodeDateRange(name string, n *yaml.Node) (model.ValidValues, error) {
	var r model.DateRange
	for key, dst := range map[string]*time.Time{"min": &r.Min, "max": &r.Max} {
		b := lookup(n, key)
		if b == nil {
			continue
		}
		t, ok := model.ParseDate(model.String(b.Value), nil)
		if !ok {
			return nil, malformed(b, fmt.Sprintf("column %q: range %s must be a date", name, key))
		}
		*dst = t
	}
	return r, nil
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func stringList(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a list")
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("expected scalar items")
		}
		out = append(out, item.Value)
	}
	return out, nil
}

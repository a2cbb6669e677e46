package model

import "fmt"

// MetadataModel is the ordered collection of column specs for one dataset.
// Insertion order is the order variables appear in the codebook.
type MetadataModel struct {
	specs []ColumnSpec
	index map[string]int
}

// NewMetadataModel builds a model from specs, rejecting malformed specs
// and duplicate names.
func NewMetadataModel(specs ...ColumnSpec) (*MetadataModel, error) {
	m := &MetadataModel{
		specs: make([]ColumnSpec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		if err := m.Add(s); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add appends a spec to the end of the model.
func (m *MetadataModel) Add(s ColumnSpec) error {
	if err := s.Check(); err != nil {
		return err
	}
	if _, dup := m.index[s.Name]; dup {
		return NewConfigurationError(fmt.Sprintf("column %q is declared twice", s.Name), ErrDuplicateColumn)
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[s.Name] = len(m.specs)
	m.specs = append(m.specs, s)
	return nil
}

// Len returns the number of declared columns.
func (m *MetadataModel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.specs)
}

// Specs returns a copy of the specs in presentation order.
func (m *MetadataModel) Specs() []ColumnSpec {
	if m == nil {
		return nil
	}
	out := make([]ColumnSpec, len(m.specs))
	copy(out, m.specs)
	return out
}

// Get returns the spec for name.
func (m *MetadataModel) Get(name string) (ColumnSpec, bool) {
	if m == nil {
		return ColumnSpec{}, false
	}
	i, ok := m.index[name]
	if !ok {
		return ColumnSpec{}, false
	}
	return m.specs[i], true
}

// Has reports whether name is declared.
func (m *MetadataModel) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

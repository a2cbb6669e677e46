package model

import "fmt"

// Column is one named column of a Table.
type Column struct {
	Name   string
	Values []Value
}

// Table is a rectangular dataset of named columns.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table, rejecting empty or duplicate names and columns
// of unequal length.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c.Name == "" {
			return nil, NewConfigurationError(fmt.Sprintf("table column %d has no name", i), ErrMalformedTable)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, NewConfigurationError(fmt.Sprintf("table column %q appears twice", c.Name), ErrMalformedTable)
		}
		if i == 0 {
			t.rows = len(c.Values)
		} else if len(c.Values) != t.rows {
			return nil, NewConfigurationError(
				fmt.Sprintf("table column %q has %d rows, expected %d", c.Name, len(c.Values), t.rows),
				ErrMalformedTable)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// NumRows returns the shared row count.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]Value, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i].Values, true
}

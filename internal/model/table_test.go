package model

import (
	"errors"
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	t.Run("rectangular", func(t *testing.T) {
		t.Parallel()
		tbl, err := NewTable(
			Column{Name: "a", Values: Strings("1", "2")},
			Column{Name: "b", Values: Strings("x", "")},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tbl.NumRows() != 2 || tbl.NumColumns() != 2 {
			t.Errorf("expected 2x2, got %dx%d", tbl.NumRows(), tbl.NumColumns())
		}
		if names := tbl.ColumnNames(); names[0] != "a" || names[1] != "b" {
			t.Errorf("expected [a b], got %v", names)
		}
		if _, ok := tbl.Column("c"); ok {
			t.Error("expected missing column lookup to fail")
		}
	})

	testCases := []struct {
		name    string
		columns []Column
	}{
		{"ragged", []Column{{Name: "a", Values: Strings("1")}, {Name: "b", Values: Strings("1", "2")}}},
		{"duplicate", []Column{{Name: "a"}, {Name: "a"}}},
		{"unnamed", []Column{{Name: ""}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewTable(tc.columns...); !errors.Is(err, ErrMalformedTable) {
				t.Errorf("expected ErrMalformedTable, got %v", err)
			}
		})
	}
}

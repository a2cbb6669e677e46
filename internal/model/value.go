package model

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies which field of a Value is populated.
type ValueKind int

const (
	// ValueEmpty is an absent cell.
	ValueEmpty ValueKind = iota
	// ValueString is a raw textual cell.
	ValueString
	// ValueNumber is a cell already decoded as a number.
	ValueNumber
	// ValueDate is a cell already decoded as a date.
	ValueDate
)

// DateLayout is the canonical layout used when a date value is printed.
const DateLayout = "2006-01-02"

// Value is one raw cell of a Table.
// Loaders produce strings; programmatic callers may supply numbers and
// dates directly.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Time time.Time
}

// Empty returns an absent cell.
func Empty() Value { return Value{Kind: ValueEmpty} }

// String returns a textual cell.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// Date returns a date cell.
func Date(t time.Time) Value { return Value{Kind: ValueDate, Time: t} }

// Strings converts raw strings to cells; "" becomes an empty cell.
func Strings(values ...string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = Empty()
			continue
		}
		out[i] = String(v)
	}
	return out
}

// IsEmpty reports whether the cell is absent or blank.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case ValueEmpty:
		return true
	case ValueString:
		return strings.TrimSpace(v.Str) == ""
	default:
		return false
	}
}

// Text returns the canonical textual form of the cell.
// Numbers use the shortest representation, so 1.0 and "1" compare equal.
func (v Value) Text() string {
	switch v.Kind {
	case ValueString:
		return strings.TrimSpace(v.Str)
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueDate:
		if v.Time.Hour() == 0 && v.Time.Minute() == 0 && v.Time.Second() == 0 {
			return v.Time.Format(DateLayout)
		}
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

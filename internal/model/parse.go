package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayouts are tried in order when a raw cell is parsed as a date.
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// ParseNumber decodes a cell as a float. Thousands separators are not
// accepted; NaN and infinities are rejected.
func ParseNumber(v Value) (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		if !finite(v.Num) {
			return 0, false
		}
		return v.Num, true
	case ValueString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		if !finite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParseDate decodes a cell as a time using layouts, or
// DefaultDateLayouts when layouts is empty.
func ParseDate(v Value, layouts []string) (time.Time, bool) {
	switch v.Kind {
	case ValueDate:
		return v.Time, true
	case ValueString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return time.Time{}, false
		}
		if len(layouts) == 0 {
			layouts = DefaultDateLayouts
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

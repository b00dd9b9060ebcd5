// Package document holds the in-memory tabular shape every processing stage
// consumes and produces: a named, ordered list of rows keyed by column alias.
//
// Stages never mutate a document they were handed. Anything that adds
// columns works on a Clone.
package document

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Row maps a column alias to a scalar. Decoders produce string values;
// numbers arrive as float64.
type Row map[string]any

// Document is a named sequence of rows.
type Document struct {
	Name string
	Rows []Row
}

// Clone returns a shallow copy of the row. Values are scalars so this is
// enough to keep stages independent.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the column exists in the row, even if blank.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Keys returns the row's column aliases in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone copies the document and every row.
func (d Document) Clone() Document {
	rows := make([]Row, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = r.Clone()
	}
	return Document{Name: d.Name, Rows: rows}
}

// Columns returns the sorted key set of the first row, or nil for an empty
// document.
func (d Document) Columns() []string {
	if len(d.Rows) == 0 {
		return nil
	}
	return d.Rows[0].Keys()
}

// Text renders a cell value the way it would be written to a text file.
// Integral floats print without a fraction.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsEmpty reports whether a cell carries no data: absent, nil, or a string
// of only whitespace.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}

// Number reads a numeric cell. Numeric strings count, since text decoders
// never produce numbers on their own.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is a number value, as opposed to a string.
func IsNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

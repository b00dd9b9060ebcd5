package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// ColumnErrors groups the failures of one column in one row.
type ColumnErrors struct {
	Column string    `json:"column"`
	Errors []Failure `json:"errors"`
}

// RowResult is the outcome for one row. Row is the zero-based index into
// the document. Skipped rows had none of the validated columns at all and
// count as passing.
type RowResult struct {
	Row     int            `json:"row"`
	OK      bool           `json:"ok"`
	Skipped bool           `json:"skipped,omitempty"`
	Errors  []ColumnErrors `json:"errors"`
}

// DocumentResult is the outcome for a whole document. OK is false as soon
// as one row fails.
type DocumentResult struct {
	OK      bool        `json:"ok"`
	Results []RowResult `json:"results"`
}

// ErrorRows counts the rows that failed.
func (r DocumentResult) ErrorRows() int {
	n := 0
	for _, row := range r.Results {
		if !row.OK {
			n++
		}
	}
	return n
}

// CompileError collects every rule that failed to build.
type CompileError struct {
	Errors []*RuleError
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invalid validation rule(s):", len(e.Errors))
	for _, re := range e.Errors {
		sb.WriteString("\n  ")
		sb.WriteString(re.Error())
	}
	return sb.String()
}

type columnValidators struct {
	column     string
	validators []Validator
}

// Set is the ordered list of validators per column that a document is
// checked against.
type Set struct {
	columns []columnValidators
}

// Columns returns the validated column aliases in order.
func (s Set) Columns() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.column
	}
	return out
}

// For returns the validators of one column.
func (s Set) For(column string) []Validator {
	for _, c := range s.columns {
		if c.column == column {
			return c.validators
		}
	}
	return nil
}

// Len is the number of validated columns.
func (s Set) Len() int { return len(s.columns) }

// Compile builds a Set for the given columns, in their order. Each column
// gets its own rules followed by the wildcard rules. Rules under keys that
// are not listed in columns are still built, so every malformed rule in the
// section is reported; their validators are not used.
func Compile(rules map[string][]config.Rule, columns []string, opts ...Option) (Set, error) {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	built := make(map[string][]Validator, len(keys))
	var failed []*RuleError
	for _, key := range keys {
		for i, rule := range rules[key] {
			v, err := New(rule, opts...)
			if err != nil {
				var re *RuleError
				if !errors.As(err, &re) {
					re = &RuleError{Op: rule.Op, Reason: err.Error()}
				}
				re.Column, re.Index = key, i
				failed = append(failed, re)
				continue
			}
			built[key] = append(built[key], v)
		}
	}
	if len(failed) > 0 {
		return Set{}, &CompileError{Errors: failed}
	}

	var set Set
	for _, col := range columns {
		vs := slices.Concat(built[col], built[config.Wildcard])
		if len(vs) == 0 {
			continue
		}
		set.columns = append(set.columns, columnValidators{column: col, validators: vs})
	}
	return set, nil
}

// Restrict keeps only the listed columns, and drops validators whose
// target column is not listed either. Used for mapping-only documents.
func (s Set) Restrict(columns []string) Set {
	keep := make(map[string]bool, len(columns))
	for _, c := range columns {
		keep[c] = true
	}

	var out Set
	for _, c := range s.columns {
		if !keep[c.column] {
			continue
		}
		var vs []Validator
		for _, v := range c.validators {
			if t, ok := v.(Targeted); ok && !keep[t.Target()] {
				continue
			}
			vs = append(vs, v)
		}
		if len(vs) > 0 {
			out.columns = append(out.columns, columnValidators{column: c.column, validators: vs})
		}
	}
	return out
}

// ValidateDocument runs the set over every row.
func ValidateDocument(set Set, doc document.Document) DocumentResult {
	result := DocumentResult{OK: true, Results: make([]RowResult, len(doc.Rows))}
	for i := range doc.Rows {
		r := ValidateRow(set, doc, i)
		result.Results[i] = r
		if !r.OK {
			result.OK = false
		}
	}
	return result
}

const missingColumnMessage = "column is missing"

// ValidateRow validates row i of doc. A column absent from the row yields a
// single field_name failure instead of running its validators. When every
// validated column is absent the row is skipped.
func ValidateRow(set Set, doc document.Document, i int) RowResult {
	row := doc.Rows[i]
	result := RowResult{Row: i, OK: true, Errors: []ColumnErrors{}}

	absent := 0
	for _, c := range set.columns {
		if !row.Has(c.column) {
			absent++
		}
	}
	if set.Len() > 0 && absent == set.Len() {
		result.Skipped = true
		return result
	}

	for _, c := range set.columns {
		value, present := row[c.column]
		if !present {
			result.Errors = append(result.Errors, ColumnErrors{
				Column: c.column,
				Errors: []Failure{{Kind: FieldName, Message: missingColumnMessage}},
			})
			continue
		}

		ctx := Context{Row: row, Document: doc, Column: c.column}
		var failures []Failure
		for _, v := range c.validators {
			if f := v.Validate(value, ctx); f != nil {
				failures = append(failures, *f)
			}
		}
		if len(failures) > 0 {
			result.Errors = append(result.Errors, ColumnErrors{Column: c.column, Errors: failures})
		}
	}

	result.OK = len(result.Errors) == 0
	return result
}

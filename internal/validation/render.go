package validation

import (
	"strings"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// Columns added to every row of an error document.
const (
	RowNumberColumn = "row_number"
	ErrorsColumn    = "errors"
)

// firstDataRow is the spreadsheet row number of the first record; row 1 is
// the header.
const firstDataRow = 2

// RenderErrorDocument annotates a copy of doc with each row's spreadsheet
// row number and a readable error summary. Each failing column becomes one
// line, "<human name> <messages>;", using the source map's names.
func RenderErrorDocument(source config.ColumnMap, doc document.Document, result DocumentResult) document.Document {
	out := document.Document{Name: doc.Name, Rows: make([]document.Row, len(doc.Rows))}
	for i, row := range doc.Rows {
		r := row.Clone()
		r[RowNumberColumn] = float64(i + firstDataRow)
		r[ErrorsColumn] = ""
		if i < len(result.Results) {
			r[ErrorsColumn] = summarize(source, result.Results[i].Errors)
		}
		out.Rows[i] = r
	}
	return out
}

func summarize(source config.ColumnMap, errs []ColumnErrors) string {
	lines := make([]string, 0, len(errs))
	for _, ce := range errs {
		msgs := make([]string, len(ce.Errors))
		for i, f := range ce.Errors {
			msgs[i] = f.Message
		}
		lines = append(lines, source.NameOf(ce.Column)+" "+strings.Join(msgs, ", ")+";")
	}
	return strings.Join(lines, "\n")
}

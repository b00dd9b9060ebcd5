package cli

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
	"github.com/roach88/commonid/internal/validation"
)

// RowReport lists the failures of one input row. Line is the line number
// in the input file, header included.
type RowReport struct {
	Line   int                 `json:"line"`
	Errors map[string][]string `json:"errors"`
}

func readDocument(path string, source config.ColumnMap) (document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return document.Document{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return document.ReadCSV(f, document.NameFromPath(path), source)
}

// writeDocument writes the selected columns of doc next to the other
// outputs in dir and returns the file path.
func writeDocument(dir, input string, doc document.Document, columns []config.Column, postfix string) (string, error) {
	path := filepath.Join(dir, document.OutputName(input, postfix))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}
	if err := document.WriteCSV(f, doc, columns); err != nil {
		f.Close()
		return "", err
	}
	return path, errors.Wrapf(f.Close(), "close %s", path)
}

// rowReports keeps the failing rows, keyed by the human column name.
func rowReports(source config.ColumnMap, result validation.DocumentResult) []RowReport {
	var out []RowReport
	for _, row := range result.Results {
		if row.OK {
			continue
		}
		rr := RowReport{Line: row.Row + 2, Errors: map[string][]string{}}
		for _, ce := range row.Errors {
			name := source.NameOf(ce.Column)
			for _, f := range ce.Errors {
				rr.Errors[name] = append(rr.Errors[name], f.Message)
			}
		}
		out = append(out, rr)
	}
	return out
}

package document

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/commonid/internal/config"
)

// ReadCSV decodes a comma separated file whose header row carries the
// source columns' human names. Headers may also use the alias directly.
// Headers unknown to the source map are dropped. Blank cells of a present
// column take the column's configured default; columns missing from the
// header stay missing so validation can report them.
func ReadCSV(r io.Reader, name string, source config.ColumnMap) (Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Document{Name: name}, nil
	}
	if err != nil {
		return Document{}, errors.Wrap(err, "read csv header")
	}

	byName := make(map[string]config.Column, len(source.Columns)*2)
	for _, col := range source.Columns {
		byName[strings.ToLower(col.Alias)] = col
	}
	for _, col := range source.Columns {
		if col.Name != "" {
			byName[strings.ToLower(col.Name)] = col
		}
	}

	cols := make([]*config.Column, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		col, ok := byName[strings.ToLower(h)]
		if !ok {
			continue
		}
		if seen[col.Alias] {
			return Document{}, errors.Newf("csv header %q maps to column %q more than once", h, col.Alias)
		}
		seen[col.Alias] = true
		cols[i] = &col
	}

	doc := Document{Name: name}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, errors.Wrapf(err, "read csv line %d", line)
		}
		if blankRecord(record) {
			continue
		}
		row := make(Row, len(seen))
		for i, col := range cols {
			if col == nil {
				continue
			}
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			if strings.TrimSpace(cell) == "" && col.Default != nil {
				row[col.Alias] = col.Default
				continue
			}
			row[col.Alias] = cell
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteCSV encodes the document using the given destination columns: their
// human names form the header and their aliases select the cells.
func WriteCSV(w io.Writer, doc Document, columns []config.Column) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
		if header[i] == "" {
			header[i] = col.Alias
		}
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	record := make([]string, len(columns))
	for _, row := range doc.Rows {
		for i, col := range columns {
			record[i] = Text(row[col.Alias])
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// OutputName derives an output file name from an input path: the base name
// without extension, the postfix, then ".csv".
func OutputName(input, postfix string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + postfix + ".csv"
}

// NameFromPath is the document name used for a decoded file.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/commonid/internal/canonical"
	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// Snapshot is the part of an outcome pinned by a golden file: what an
// encoder would write.
type Snapshot struct {
	ScenarioName string
	Valid        bool
	MappingOnly  bool
	ErrorRows    int
	Postfix      string
	Columns      []config.Column
	Rows         []document.Row
	// MappingPostfix and MappingColumns describe the extra mapping file,
	// when there is one.
	MappingPostfix string
	MappingColumns []config.Column
}

// NewSnapshot builds the snapshot of a scenario result.
func NewSnapshot(name string, r *Result) Snapshot {
	out := r.Outcome
	s := Snapshot{
		ScenarioName: name,
		Valid:        out.Valid,
		MappingOnly:  out.MappingOnly,
		ErrorRows:    out.Result.ErrorRows(),
		Postfix:      out.Postfix,
		Columns:      out.Columns,
		Rows:         out.Output.Rows,
	}
	if out.Mapping != nil {
		s.MappingPostfix = out.Mapping.Postfix
		s.MappingColumns = out.Mapping.Columns
	}
	return s
}

// toCanonicalMap keeps only the selected columns of each row, rendered as
// text the way the CSV encoder writes them.
func (s Snapshot) toCanonicalMap() map[string]any {
	rows := make([]any, len(s.Rows))
	for i, row := range s.Rows {
		cells := make(map[string]any, len(s.Columns))
		for _, col := range s.Columns {
			cells[col.Alias] = document.Text(row[col.Alias])
		}
		rows[i] = cells
	}

	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"valid":         s.Valid,
		"mapping_only":  s.MappingOnly,
		"error_rows":    s.ErrorRows,
		"postfix":       s.Postfix,
		"columns":       aliases(s.Columns),
		"rows":          rows,
	}
	if s.MappingColumns != nil {
		m["mapping"] = map[string]any{
			"postfix": s.MappingPostfix,
			"columns": aliases(s.MappingColumns),
		}
	}
	return m
}

func aliases(cols []config.Column) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.Alias
	}
	return out
}

// RunWithGolden runs a scenario and compares its snapshot with
// testdata/golden/<name>.golden.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := canonical.Marshal(NewSnapshot(name, result).toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

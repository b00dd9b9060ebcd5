package harness

import (
	"context"
	"fmt"

	"github.com/roach88/commonid/internal/clock"
	"github.com/roach88/commonid/internal/daterange"
	"github.com/roach88/commonid/internal/document"
	"github.com/roach88/commonid/internal/integrity"
	"github.com/roach88/commonid/internal/ledger"
	"github.com/roach88/commonid/internal/pipeline"
)

// Run executes a scenario: verify the configuration, process the rows with
// the clock fixed at the scenario's day, record the run in a fresh
// in-memory ledger and evaluate the assertions.
func Run(scenario *Scenario) (*Result, error) {
	today, err := daterange.ParseDate(scenario.Today)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	clk := clock.NewFixed(today)

	cfg, err := integrity.LoadAndVerify(scenario.Config, scenario.Region)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	p, err := pipeline.New(cfg, nil, pipeline.WithClock(clk))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	doc := document.Document{Name: scenario.Name, Rows: make([]document.Row, len(scenario.Rows))}
	for i, r := range scenario.Rows {
		doc.Rows[i] = normalizeRow(r)
	}

	outcome, err := p.Process(doc)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	l, err := ledger.Open(":memory:", ledger.WithClock(clk))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory ledger: %w", err)
	}
	defer l.Close()

	run, err := l.Record(context.Background(), ledger.Run{
		Region:          cfg.Meta.Region,
		ConfigSignature: cfg.Meta.Signature,
		Document:        doc.Name,
		Rows:            len(doc.Rows),
		ErrorRows:       outcome.Result.ErrorRows(),
		Valid:           outcome.Valid,
		MappingOnly:     outcome.MappingOnly,
		OutputFile:      document.OutputName(doc.Name, outcome.Postfix),
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Outcome = outcome
	result.Run = run
	for _, msg := range EvaluateAssertions(outcome, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// normalizeRow maps YAML scalars onto the decoded document contract:
// strings stay strings, numbers become float64.
func normalizeRow(in map[string]any) document.Row {
	row := make(document.Row, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case int:
			row[k] = float64(x)
		case int64:
			row[k] = float64(x)
		case float64, string, nil:
			row[k] = x
		default:
			row[k] = fmt.Sprint(x)
		}
	}
	return row
}

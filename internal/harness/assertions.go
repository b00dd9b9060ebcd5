package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/commonid/internal/document"
	"github.com/roach88/commonid/internal/pipeline"
)

// AssertionError describes one failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(out *pipeline.Outcome, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(out, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(out *pipeline.Outcome, a Assertion) error {
	switch a.Type {
	case AssertValid:
		return expectBool(a, out.Valid)
	case AssertMappingOnly:
		return expectBool(a, out.MappingOnly)
	case AssertRowError:
		return assertRowError(out, a)
	case AssertOutputValue:
		return assertOutputValue(out, a)
	case AssertColumns:
		got := make([]string, len(out.Columns))
		for i, c := range out.Columns {
			got[i] = c.Alias
		}
		if !slices.Equal(got, a.Columns) {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(a.Columns), Actual: fmt.Sprint(got)}
		}
	case AssertPostfix:
		if out.Postfix != a.Postfix {
			return &AssertionError{Type: a.Type, Expected: a.Postfix, Actual: out.Postfix}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func expectBool(a Assertion, got bool) error {
	if *a.Expect != got {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Expect), Actual: fmt.Sprint(got)}
	}
	return nil
}

func assertRowError(out *pipeline.Outcome, a Assertion) error {
	if a.Row < 0 || a.Row >= len(out.Result.Results) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("row %d", a.Row), Actual: fmt.Sprintf("%d rows", len(out.Result.Results))}
	}
	var kinds []string
	for _, ce := range out.Result.Results[a.Row].Errors {
		if ce.Column != a.Column {
			continue
		}
		for _, f := range ce.Errors {
			if string(f.Kind) == a.Kind {
				return nil
			}
			kinds = append(kinds, string(f.Kind))
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("row %d column %s fails %s", a.Row, a.Column, a.Kind),
		Actual:   fmt.Sprintf("failures %v", kinds),
	}
}

func assertOutputValue(out *pipeline.Outcome, a Assertion) error {
	if a.Row < 0 || a.Row >= len(out.Output.Rows) {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("row %d", a.Row), Actual: fmt.Sprintf("%d rows", len(out.Output.Rows))}
	}
	got := document.Text(out.Output.Rows[a.Row][a.Column])
	if got != a.Value {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("row %d %s = %q", a.Row, a.Column, a.Value),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

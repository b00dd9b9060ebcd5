package harness

import (
	"github.com/roach88/commonid/internal/ledger"
	"github.com/roach88/commonid/internal/pipeline"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// Outcome is what the pipeline produced.
	Outcome *pipeline.Outcome `json:"-"`

	// Run is the ledger entry recorded for the scenario.
	Run ledger.Run `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records a failed assertion.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}

package harness

import (
	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/ir"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	Scenario string `json:"scenario"`

	// Report is the validator's result for the unit.
	Report compiler.Result `json:"report"`

	// Record is the run as read back from the scenario's history store.
	Record ir.RunRecord `json:"record"`

	// Errors lists failed expectations. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Errors:   []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

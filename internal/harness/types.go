package harness

import (
	"github.com/roach88/tdgen/internal/engine"
	"github.com/roach88/tdgen/internal/ir"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions match.
	Pass bool `json:"pass"`

	// RunID is the id the run was recorded under.
	RunID string `json:"run_id"`

	// Signatures are every emitted signature in emission order.
	// Empty when the run failed.
	Signatures []ir.Signature `json:"signatures"`

	// Skipped lists records dropped during extraction.
	Skipped []engine.SkippedRecord `json:"skipped"`

	// Stage and Failure describe the run error, if any.
	Stage   engine.Stage `json:"stage,omitempty"`
	Failure string       `json:"failure,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Signatures: []ir.Signature{},
		Skipped:    []engine.SkippedRecord{},
		Errors:     []string{},
	}
}

// Failed reports whether the run itself stopped with an error.
func (r *Result) Failed() bool {
	return r.Failure != ""
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

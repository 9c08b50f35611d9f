package harness

import "github.com/roach88/listbind/internal/trace"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step, expectation and assertion held.
	Pass bool `json:"pass"`

	// Binder is the name the binder ran under.
	Binder string `json:"binder"`

	// Trace holds every event the binder emitted, including close.
	Trace []trace.Event `json:"trace"`

	// Errors describes each failure. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// FinalA and FinalB are the list contents after the last step.
	FinalA []int    `json:"final_a"`
	FinalB []string `json:"final_b"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
		FinalA: []int{},
		FinalB: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

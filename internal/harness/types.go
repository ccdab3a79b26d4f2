package harness

import (
	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
)

// Step operations recorded in the trace.
const (
	OpApply = "apply"
	OpCheck = "check"
	OpUndo  = "undo"
	OpRedo  = "redo"
)

// TraceEvent records one executed scenario step.
type TraceEvent struct {
	Step     int            `json:"step"`
	Op       string         `json:"op"`
	Type     character.Type `json:"type,omitempty"`
	Code     rejection.Code `json:"code,omitempty"`
	Cursor   int            `json:"cursor"`
	Repaired []string       `json:"repaired,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Memo is the final state, re-read from the store snapshot.
	Memo character.Memo `json:"memo"`

	// Cursor is the final event source cursor.
	Cursor int `json:"cursor"`

	// Log lists the types of the active mutations, log[:cursor].
	Log []character.Type `json:"log"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Log:    []character.Type{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

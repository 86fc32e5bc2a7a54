package dag

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one step.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// Result holds the outcome of one pipeline run.
type Result struct {
	RunID uuid.UUID
	// Steps lists evaluated nodes in execution order.
	Steps   []StepResult
	Outputs []any
	// Stopped names the node whose stop condition ended the run, if any.
	Stopped  string
	Duration time.Duration
}

// StepResult holds the outcome of a single node evaluation.
type StepResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Output   any
	Error    error
}

// Step returns the result for the named node.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

package dagtest

import (
	"context"
	"sync"

	"github.com/kbukum/dagpipe/dag"
)

// Step is one evaluation seen by a Recorder.
type Step struct {
	Name   string
	Index  int
	Output any
	Err    error
}

// Recorder captures every step a pipeline evaluates.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Middleware returns a middleware that records into r.
func (r *Recorder) Middleware() dag.Middleware {
	return func(next dag.StepFunc) dag.StepFunc {
		return func(ctx context.Context, node dag.Node) (any, error) {
			out, err := next(ctx, node)
			info, _ := dag.StepInfoFromContext(ctx)
			r.mu.Lock()
			r.steps = append(r.steps, Step{Name: node.Name(), Index: info.Index, Output: out, Err: err})
			r.mu.Unlock()
			return out, err
		}
	}
}

// Steps returns the recorded steps in evaluation order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Names returns the recorded node names in evaluation order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return names
}

// Reset discards recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

package dag

import (
	"context"
	"fmt"
	"reflect"
)

// round tracks which refs of one owner have run since the owner was last
// evaluated.
type round struct {
	ran       []bool
	evaluated bool
}

func newRound(outputs int) *round {
	return &round{ran: make([]bool, outputs)}
}

func (r *round) grow(outputs int) {
	if outputs > len(r.ran) {
		r.ran = append(r.ran, make([]bool, outputs-len(r.ran))...)
	}
}

func (r *round) reset() {
	clear(r.ran)
	r.evaluated = false
}

func (r *round) seen(i int) bool {
	return i < len(r.ran) && r.ran[i]
}

func (r *round) mark(i int) {
	r.grow(i + 1)
	r.ran[i] = true
}

// Ref is one output slot of a multi-output task. It stands in for its owner
// in the graph: its inputs are the owner's inputs and running it evaluates the
// owner at most once per round.
type Ref struct {
	id    uint64
	owner *Task
	index int
	name  string

	result any
}

var _ Node = (*Ref)(nil)

// ID implements Node.
func (r *Ref) ID() uint64 { return r.id }

// Name implements Node. Unnamed refs render as owner[index].
func (r *Ref) Name() string {
	if r.name != "" {
		return r.name
	}
	return fmt.Sprintf("%s[%d]", r.owner.Name(), r.index)
}

// SetName renames the ref and returns it.
func (r *Ref) SetName(name string) *Ref {
	r.name = name
	return r
}

// Owner returns the task whose output this ref selects.
func (r *Ref) Owner() *Task { return r.owner }

// Index returns the output slot.
func (r *Ref) Index() int { return r.index }

// Result implements Node.
func (r *Ref) Result() any { return r.result }

// Inputs implements Node.
func (r *Ref) Inputs() []Node { return r.owner.Inputs() }

// Update forwards to the owner.
func (r *Ref) Update(a []any, kw map[string]any) error {
	return r.owner.Update(a, kw)
}

// Run evaluates the owner when this round has not produced its result yet,
// then selects the output slot. Running the same ref twice without a reset
// starts a new round.
func (r *Ref) Run(ctx context.Context) (any, error) {
	rd := r.owner.round
	if rd.seen(r.index) {
		rd.reset()
	}
	if !rd.evaluated || !r.owner.hasResult {
		if _, err := r.owner.evaluate(ctx); err != nil {
			return nil, err
		}
	}
	rd.mark(r.index)

	out, err := pick(r.owner.Name(), r.owner.result, r.index)
	if err != nil {
		return nil, err
	}
	r.result = out
	return out, nil
}

func pick(owner string, result any, i int) (any, error) {
	v := reflect.ValueOf(result)
	if !v.IsValid() {
		return nil, outputShape(owner, i, "result is nil")
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, outputShape(owner, i, fmt.Sprintf("result of type %T is not a sequence", result))
	}
	if i >= v.Len() {
		return nil, outputShape(owner, i, fmt.Sprintf("result has %d elements", v.Len()))
	}
	return v.Index(i).Interface(), nil
}

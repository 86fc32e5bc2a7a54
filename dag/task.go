package dag

import (
	"context"

	"github.com/kbukum/dagpipe/args"
)

// Task is a deferred call: a definition plus its captured arguments.
type Task struct {
	id     uint64
	def    *Def
	name   string
	bound  *args.Bound
	inputs []Node

	result    any
	hasResult bool

	outputs int
	refs    []*Ref
	round   *round
}

var _ Node = (*Task)(nil)

func newTask(d *Def, a []any, kw map[string]any) (*Task, error) {
	wrapped := make([]any, len(a))
	for i, v := range a {
		wrapped[i] = valueOf(v)
	}
	wrappedKw := make(map[string]any, len(kw))
	for k, v := range kw {
		wrappedKw[k] = valueOf(v)
	}
	b, err := d.sig.Bind(wrapped, wrappedKw)
	if err != nil {
		return nil, err
	}

	t := &Task{
		id:      nextID(),
		def:     d,
		name:    d.name,
		bound:   b,
		outputs: d.outputs,
	}
	if err := t.checkVariadic(); err != nil {
		return nil, err
	}
	t.inputs = t.collectInputs()
	t.round = newRound(t.outputs)
	if t.outputs > 1 {
		t.makeRefs(nil)
	}
	return t, nil
}

// ID implements Node.
func (t *Task) ID() uint64 { return t.id }

// Name implements Node.
func (t *Task) Name() string { return t.name }

// SetName renames the task and returns it.
func (t *Task) SetName(name string) *Task {
	t.name = name
	return t
}

// Def returns the definition the task was built from.
func (t *Task) Def() *Def { return t.def }

// Result implements Node.
func (t *Task) Result() any { return t.result }

// HasResult reports whether the task has been evaluated at least once.
func (t *Task) HasResult() bool { return t.hasResult }

// Inputs implements Node.
func (t *Task) Inputs() []Node { return t.inputs }

// Arg returns the value bound to a named parameter.
func (t *Task) Arg(name string) (Value, bool) {
	v, ok := t.bound.Get(name)
	if !ok {
		return Value{}, false
	}
	return valueOf(v), true
}

// Args returns every bound value in declaration order.
func (t *Task) Args() []Value {
	raw := t.bound.Values()
	out := make([]Value, len(raw))
	for i, v := range raw {
		out[i] = valueOf(v)
	}
	return out
}

// NumOutputs returns the declared output count.
func (t *Task) NumOutputs() int { return t.outputs }

// Nested returns the pipeline this task wraps, if it was built by AsTask.
func (t *Task) Nested() *Pipeline { return t.def.nested }

// Stopped returns the marker a pipeline reports when it stops at this task.
func (t *Task) Stopped() Stopped { return Stopped{At: t} }

// Update merges literal arguments into the task. Positional values fill
// positional parameters from the start; parameters not supplied keep their
// value. Slots that hold nodes cannot be overwritten and nodes cannot be bound.
func (t *Task) Update(a []any, kw map[string]any) error {
	if len(a) == 0 && len(kw) == 0 {
		return nil
	}
	upd, err := t.def.sig.Bind(a, kw)
	if err != nil {
		return err
	}
	for _, name := range upd.Names() {
		if v, _ := upd.Get(name); isNode(v) {
			return nodeBinding(t.name, name)
		}
		if cur, ok := t.bound.Get(name); ok && isNodeValue(cur) {
			return argumentOverwrite(t.name, name)
		}
	}
	if rest, ok := upd.Variadic(); ok {
		if name, has := t.variadicName(); has {
			for _, v := range rest {
				if isNode(v) {
					return nodeBinding(t.name, name)
				}
			}
			cur, _ := t.bound.Variadic()
			for _, v := range cur {
				if isNodeValue(v) {
					return argumentOverwrite(t.name, name)
				}
			}
		}
	}
	for _, key := range upd.ExtraKeys() {
		v, _ := upd.Extra(key)
		if isNode(v) {
			return nodeBinding(t.name, key)
		}
		if cur, ok := t.bound.Extra(key); ok && isNodeValue(cur) {
			return argumentOverwrite(t.name, key)
		}
	}

	t.bound.Merge(literalize(upd))
	return nil
}

// Run evaluates the task with its current arguments.
func (t *Task) Run(ctx context.Context) (any, error) {
	return t.evaluate(ctx)
}

// RunWith updates the arguments and evaluates the task.
func (t *Task) RunWith(ctx context.Context, a []any, kw map[string]any) (any, error) {
	if err := t.Update(a, kw); err != nil {
		return nil, err
	}
	return t.evaluate(ctx)
}

// step evaluates the task once per round. A ref that already evaluated the
// owner in this round leaves nothing to do.
func (t *Task) step(ctx context.Context) (any, error) {
	if t.round.evaluated && t.hasResult {
		return t.result, nil
	}
	return t.evaluate(ctx)
}

func (t *Task) evaluate(ctx context.Context) (any, error) {
	pos, kw, err := t.bound.Complete()
	if err != nil {
		return nil, err
	}
	call := make([]any, 0, len(pos)+1)
	if t.def.owner != nil {
		call = append(call, t.def.owner)
	}
	for _, v := range pos {
		call = append(call, resolve(v))
	}
	for k, v := range kw {
		kw[k] = resolve(v)
	}

	res, err := t.def.fn(ctx, call, kw)
	if err != nil {
		return nil, err
	}
	t.result = res
	t.hasResult = true
	t.round.evaluated = true
	return res, nil
}

// SplitOutput declares one output per name and returns the named refs.
func (t *Task) SplitOutput(names ...string) []*Ref {
	t.outputs = len(names)
	t.round.grow(t.outputs)
	t.makeRefs(names)
	return t.refs
}

// Refs returns one ref per declared output.
func (t *Task) Refs() []*Ref {
	if t.refs == nil {
		t.makeRefs(nil)
	}
	return t.refs
}

// Ref returns the ref for output i.
func (t *Task) Ref(i int) (*Ref, error) {
	if i < 0 || i >= t.outputs {
		return nil, undefinedOutput(t.name, i, t.outputs)
	}
	return t.Refs()[i], nil
}

func (t *Task) makeRefs(names []string) {
	refs := make([]*Ref, t.outputs)
	for i := range refs {
		if i < len(t.refs) {
			refs[i] = t.refs[i]
		} else {
			refs[i] = &Ref{id: nextID(), owner: t, index: i}
		}
		if i < len(names) {
			refs[i].name = names[i]
		}
	}
	t.refs = refs
}

func (t *Task) collectInputs() []Node {
	var inputs []Node
	seen := make(map[uint64]bool)
	for _, v := range t.bound.Values() {
		if val, ok := v.(Value); ok && val.IsNode() {
			inputs = appendInput(inputs, seen, val.Node())
		}
	}
	return inputs
}

// checkVariadic rejects a variadic parameter holding both nodes and literals.
func (t *Task) checkVariadic() error {
	rest, ok := t.bound.Variadic()
	if !ok || len(rest) == 0 {
		return nil
	}
	nodes := 0
	for _, v := range rest {
		if isNodeValue(v) {
			nodes++
		}
	}
	if nodes != 0 && nodes != len(rest) {
		name, _ := t.variadicName()
		return mixedVariadic(t.name, name)
	}
	return nil
}

func (t *Task) variadicName() (string, bool) {
	for _, p := range t.def.sig.Params() {
		if p.Kind == args.Variadic {
			return p.Name, true
		}
	}
	return "", false
}

func (t *Task) resetRound() { t.round.reset() }

func isNode(v any) bool {
	return valueOf(v).IsNode()
}

// literalize wraps every value of b as a Value.
func literalize(b *args.Bound) *args.Bound {
	out := args.NewBound(b.Signature())
	for _, name := range b.Names() {
		v, _ := b.Get(name)
		out.Set(name, valueOf(v))
	}
	if rest, ok := b.Variadic(); ok {
		wrapped := make([]any, len(rest))
		for i, v := range rest {
			wrapped[i] = valueOf(v)
		}
		out.SetVariadic(wrapped)
	}
	for _, key := range b.ExtraKeys() {
		v, _ := b.Extra(key)
		out.SetExtra(key, valueOf(v))
	}
	return out
}

package dag

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/dagpipe/args"
	"github.com/kbukum/dagpipe/errors"
	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/observability"
	"github.com/kbukum/dagpipe/resilience"
)

// Pipeline runs the nodes its outputs depend on, in dependency order.
//
// A Pipeline is built once per graph shape and run repeatedly. Runs mutate
// node results and literal arguments only. It is not safe for concurrent use.
type Pipeline struct {
	name    string
	inputs  []Node
	outputs []Node
	ordered []Node
	opts    []Option

	stops       map[string]StopFunc
	middlewares []Middleware
	log         *logger.Logger
	metrics     *observability.Metrics
	stepLogging bool
	spanPrefix  string
	retry       resilience.RetryConfig
	step        StepFunc
}

// Args carries both positional and keyword values for one pipeline input.
type Args struct {
	Pos []any
	Kw  map[string]any
}

// New orders every node the outputs depend on and checks that each input is
// among them.
func New(inputs, outputs []Node, opts ...Option) (*Pipeline, error) {
	if len(inputs) == 0 {
		return nil, invalidPipeline("pipeline needs at least one input")
	}
	if len(outputs) == 0 {
		return nil, invalidPipeline("pipeline needs at least one output")
	}
	for _, n := range append(append([]Node(nil), inputs...), outputs...) {
		if n == nil {
			return nil, invalidPipeline("pipeline inputs and outputs must not be nil")
		}
	}
	if len(inputs) > 1 {
		names := make(map[string]bool, len(inputs))
		for _, in := range inputs {
			if names[in.Name()] {
				return nil, invalidPipeline(fmt.Sprintf("inputs of a multi-input pipeline need distinct names, %q is used twice", in.Name()))
			}
			names[in.Name()] = true
		}
	}

	p := &Pipeline{
		name:    "pipeline",
		inputs:  append([]Node(nil), inputs...),
		outputs: append([]Node(nil), outputs...),
		opts:    append([]Option(nil), opts...),
		stops:   make(map[string]StopFunc),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get("dag")
	}

	ordered, a, err := order(p.outputs)
	if err != nil {
		return nil, err
	}
	for _, in := range p.inputs {
		if !a.contains(in) {
			return nil, disconnected(in.Name())
		}
	}
	p.ordered = ordered
	p.step = p.chain()

	p.log.Debug("dag pipeline built", logger.Fields(
		logger.FieldPipeline, p.name,
		"nodes", len(p.ordered),
		"inputs", len(p.inputs),
		"outputs", len(p.outputs),
	))
	return p, nil
}

// Sequential chains single-input definitions: the first is called with a nil
// placeholder, every next one with the previous task.
func Sequential(defs ...*Def) (*Pipeline, error) {
	return SequentialWith(defs, nil)
}

// SequentialWith is Sequential with pipeline options.
func SequentialWith(defs []*Def, opts []Option) (*Pipeline, error) {
	if len(defs) == 0 {
		return nil, invalidPipeline("sequential pipeline needs at least one definition")
	}
	first, err := defs[0].CallKw([]any{nil}, nil)
	if err != nil {
		return nil, err
	}
	last := first
	for _, d := range defs[1:] {
		if last, err = d.Call(last); err != nil {
			return nil, err
		}
	}
	return New([]Node{first}, []Node{last}, opts...)
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Inputs returns the declared inputs.
func (p *Pipeline) Inputs() []Node { return append([]Node(nil), p.inputs...) }

// Outputs returns the declared outputs.
func (p *Pipeline) Outputs() []Node { return append([]Node(nil), p.outputs...) }

// Nodes returns the reachable nodes in execution order.
func (p *Pipeline) Nodes() []Node { return append([]Node(nil), p.ordered...) }

// Stops returns the names of nodes with a stop condition, sorted.
func (p *Pipeline) Stops() []string { return sortedKeys(p.stops) }

// Run routes positional arguments to the single input and runs the pipeline.
func (p *Pipeline) Run(ctx context.Context, a ...any) ([]any, error) {
	return p.Call(ctx, a, nil)
}

// RunNamed routes values to inputs by input name and runs the pipeline.
// A value of type Args supplies both positional and keyword arguments, []any
// supplies positional ones and map[string]any keyword ones. Any other value,
// including typed slices and maps such as []string or map[string]int, is
// passed as a single positional argument.
func (p *Pipeline) RunNamed(ctx context.Context, named map[string]any) ([]any, error) {
	return p.Call(ctx, nil, named)
}

// Call runs the pipeline and returns the outputs in declaration order. When a
// stop condition fires, every output is a Stopped marker.
func (p *Pipeline) Call(ctx context.Context, a []any, kw map[string]any) ([]any, error) {
	res, err := p.Execute(ctx, a, kw)
	if err != nil {
		return nil, err
	}
	return res.Outputs, nil
}

// Execute runs the pipeline and reports every step. On failure the partial
// report is returned with the error; node errors are returned unchanged.
func (p *Pipeline) Execute(ctx context.Context, a []any, kw map[string]any) (*Result, error) {
	if err := p.route(a, kw); err != nil {
		return nil, err
	}

	runID := uuid.New()
	rc := observability.NewRunContext(p.name, runID.String(), p.metrics)
	ctx, span := rc.StartRun(ctx)
	ctx = observability.WithRunContext(ctx, rc)
	ctx = logger.ContextWithRunID(ctx, runID.String())
	log := p.log.WithContext(ctx)

	res := &Result{RunID: runID}
	p.resetRounds()

	var runErr error
	for i, n := range p.ordered {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		start := time.Now()
		out, err := p.step(withStepInfo(ctx, StepInfo{Pipeline: p.name, RunID: runID.String(), Index: i}), n)
		sr := StepResult{Name: n.Name(), Status: StatusCompleted, Duration: time.Since(start), Output: out}
		if err != nil {
			sr.Status, sr.Output, sr.Error = StatusFailed, nil, err
			res.Steps = append(res.Steps, sr)
			runErr = err
			break
		}
		if pred, ok := p.stops[n.Name()]; ok && pred(out) {
			sr.Status = StatusStopped
			res.Steps = append(res.Steps, sr)
			res.Stopped = n.Name()
			res.Outputs = make([]any, len(p.outputs))
			for j := range res.Outputs {
				res.Outputs[j] = Stopped{At: n}
			}
			break
		}
		res.Steps = append(res.Steps, sr)
	}
	res.Duration = rc.Duration()

	status := "completed"
	switch {
	case runErr != nil:
		status = "failed"
	case res.Stopped != "":
		status = "stopped"
		observability.SetSpanAttribute(ctx, observability.AttrStoppedAt, res.Stopped)
	default:
		res.Outputs = make([]any, len(p.outputs))
		for i, out := range p.outputs {
			res.Outputs[i] = out.Result()
		}
	}
	rc.EndRun(ctx, span, status, runErr)

	fields := logger.Fields(
		logger.FieldPipeline, p.name,
		logger.FieldStatus, status,
		logger.FieldDuration, res.Duration.Milliseconds(),
		"steps", len(res.Steps),
	)
	if res.Stopped != "" {
		fields[logger.FieldStoppedAt] = res.Stopped
	}
	if runErr != nil {
		log.WithError(runErr).Error("dag run failed", fields)
		return res, runErr
	}
	log.Info("dag run finished", fields)
	return res, nil
}

func (p *Pipeline) route(a []any, kw map[string]any) error {
	if len(p.inputs) == 1 {
		return p.inputs[0].Update(a, kw)
	}
	if len(a) > 0 {
		return unknownInput(fmt.Sprintf("pipeline %s has %d inputs, pass values by input name", p.name, len(p.inputs)))
	}

	names := make([]string, 0, len(kw))
	for name := range kw {
		if p.input(name) == nil {
			return unknownInput(fmt.Sprintf("pipeline %s has no input named %q", p.name, name))
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pos, named := splitInput(kw[name])
		if err := p.input(name).Update(pos, named); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) input(name string) Node {
	for _, in := range p.inputs {
		if in.Name() == name {
			return in
		}
	}
	return nil
}

func splitInput(v any) ([]any, map[string]any) {
	switch x := v.(type) {
	case Args:
		return x.Pos, x.Kw
	case []any:
		return x, nil
	case map[string]any:
		return nil, x
	default:
		return []any{v}, nil
	}
}

func (p *Pipeline) resetRounds() {
	for _, n := range p.ordered {
		switch x := n.(type) {
		case *Task:
			x.resetRound()
		case *Ref:
			x.owner.resetRound()
		}
	}
}

// WithOutputs returns a pipeline with the same inputs and options whose
// outputs are the named nodes. Names are looked up among every reachable
// node, the owners of reachable refs, and nodes of nested pipelines.
func (p *Pipeline) WithOutputs(names ...string) (*Pipeline, error) {
	lookup := make(map[string]Node)
	p.collect(lookup)

	outs := make([]Node, len(names))
	for i, name := range names {
		n, ok := lookup[name]
		if !ok {
			return nil, errors.NotFound("node", name).WithCause(ErrInvalidPipeline)
		}
		outs[i] = n
	}
	return New(p.inputs, outs, p.opts...)
}

func (p *Pipeline) collect(lookup map[string]Node) {
	add := func(n Node) {
		if _, ok := lookup[n.Name()]; !ok {
			lookup[n.Name()] = n
		}
	}
	for _, n := range p.ordered {
		add(n)
		var t *Task
		switch x := n.(type) {
		case *Task:
			t = x
		case *Ref:
			t = x.owner
			add(t)
			for _, r := range t.refs {
				add(r)
			}
		}
		if t != nil && t.Nested() != nil {
			t.Nested().collect(lookup)
		}
	}
}

// AsTask wraps the pipeline as a task of another graph. Arguments bound to
// the task are routed to the pipeline's inputs on every run; the task has one
// output per pipeline output.
func (p *Pipeline) AsTask(name string, a ...any) (*Task, error) {
	return p.asTask(name, a, nil)
}

func (p *Pipeline) asTask(name string, a []any, kw map[string]any) (*Task, error) {
	if name == "" {
		name = p.name
	}
	d := &Def{
		name:    name,
		sig:     args.Any(),
		outputs: len(p.outputs),
		nested:  p,
	}
	d.fn = func(ctx context.Context, pos []any, kw map[string]any) (any, error) {
		outs, err := p.Call(ctx, pos, kw)
		if err != nil {
			return nil, err
		}
		if len(outs) == 1 {
			return outs[0], nil
		}
		return outs, nil
	}
	return d.CallKw(a, kw)
}

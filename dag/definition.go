package dag

import (
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/dagpipe/errors"
	"github.com/kbukum/dagpipe/validation"
)

// Definition is a pipeline described in YAML.
//
//	name: increment
//	inputs: [first]
//	outputs: [third]
//	stops:
//	  - node: second
//	    condition: negative
//	nodes:
//	  - name: first
//	    def: add_one
//	    args: [0]
//	  - name: second
//	    def: add_one
//	    args: [$first]
//	  - name: third
//	    pipeline: double   # another definition, run as a nested task
//	    args: [$second]
//
// Argument strings starting with "$" reference an earlier node by name, or
// one of its outputs as "$name[i]". A leading "$$" escapes a literal "$".
type Definition struct {
	Name        string           `yaml:"name" validate:"required"`
	Description string           `yaml:"description,omitempty"`
	Inputs      []string         `yaml:"inputs" validate:"required,min=1,unique"`
	Outputs     []string         `yaml:"outputs" validate:"required,min=1"`
	Stops       []StopDefinition `yaml:"stops,omitempty" validate:"dive"`
	Nodes       []NodeDefinition `yaml:"nodes" validate:"required,min=1,dive"`
}

// NodeDefinition declares one task, built either from a registered
// definition or from another pipeline definition.
type NodeDefinition struct {
	Name     string         `yaml:"name" validate:"required"`
	Def      string         `yaml:"def,omitempty" validate:"required_without=Pipeline,excluded_with=Pipeline"`
	Pipeline string         `yaml:"pipeline,omitempty"`
	Args     []any          `yaml:"args,omitempty"`
	Kwargs   map[string]any `yaml:"kwargs,omitempty"`
	// Outputs splits the task into named refs.
	Outputs []string `yaml:"outputs,omitempty" validate:"omitempty,unique"`
}

// StopDefinition attaches a registered stop condition to a node.
type StopDefinition struct {
	Node      string `yaml:"node" validate:"required"`
	Condition string `yaml:"condition" validate:"required"`
}

// ParseDefinition decodes and validates a YAML pipeline definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Validation("decoding definition").WithCause(err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks struct tags, then that names are unique and every
// input, output, and stop names a declared node.
func (d *Definition) Validate() error {
	if err := validation.Validate(d); err != nil {
		return err
	}

	v := validation.New()
	declared := make(map[string]bool)
	var names []string
	for _, n := range d.Nodes {
		names = append(names, n.Name)
		declared[n.Name] = true
		for _, out := range n.Outputs {
			names = append(names, out)
			declared[out] = true
		}
	}
	v.Unique("nodes", names)

	known := func(ref string) bool {
		name, _, _ := splitRef(ref)
		return declared[name]
	}
	v.Each("inputs", d.Inputs, known, "unknown node %q")
	v.Each("outputs", d.Outputs, known, "unknown node %q")
	for i, s := range d.Stops {
		v.Check(declared[s.Node], fmt.Sprintf("stops[%d].node", i), "unknown node %q", s.Node)
	}
	if appErr := v.Err(); appErr != nil {
		return appErr.WithDetail("pipeline", d.Name)
	}
	return nil
}

// Build turns a definition into a Pipeline. Definitions are looked up in
// reg, nested pipelines through loader, which may be nil when the
// definition has no nested pipelines. opts apply to every built pipeline.
func Build(def *Definition, reg *Registry, loader Loader, opts ...Option) (*Pipeline, error) {
	b := &builder{reg: reg, loader: loader, opts: opts, stack: make(map[string]bool)}
	return b.build(def)
}

type builder struct {
	reg    *Registry
	loader Loader
	opts   []Option
	stack  map[string]bool
}

func (b *builder) build(def *Definition) (*Pipeline, error) {
	if b.stack[def.Name] {
		return nil, invalidPipeline(fmt.Sprintf("circular include of pipeline %q", def.Name))
	}
	b.stack[def.Name] = true
	defer delete(b.stack, def.Name)

	if err := def.Validate(); err != nil {
		return nil, err
	}

	scope := make(map[string]Node)
	for _, nd := range def.Nodes {
		t, err := b.node(nd, scope)
		if err != nil {
			return nil, err
		}
		t.SetName(nd.Name)
		scope[nd.Name] = t
		if len(nd.Outputs) > 0 {
			for _, r := range t.SplitOutput(nd.Outputs...) {
				scope[r.Name()] = r
			}
		}
	}

	inputs, err := lookupAll(scope, def.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := lookupAll(scope, def.Outputs)
	if err != nil {
		return nil, err
	}

	opts := append([]Option{WithName(def.Name)}, b.opts...)
	for _, s := range def.Stops {
		pred, ok := b.reg.Condition(s.Condition)
		if !ok {
			return nil, errors.NotFound("condition", s.Condition).WithDetail("pipeline", def.Name)
		}
		opts = append(opts, WithStop(s.Node, pred))
	}
	return New(inputs, outputs, opts...)
}

func (b *builder) node(nd NodeDefinition, scope map[string]Node) (*Task, error) {
	a := make([]any, len(nd.Args))
	for i, v := range nd.Args {
		r, err := resolveArg(scope, v)
		if err != nil {
			return nil, err
		}
		a[i] = r
	}
	var kw map[string]any
	if len(nd.Kwargs) > 0 {
		kw = make(map[string]any, len(nd.Kwargs))
		for k, v := range nd.Kwargs {
			r, err := resolveArg(scope, v)
			if err != nil {
				return nil, err
			}
			kw[k] = r
		}
	}

	if nd.Pipeline != "" {
		if b.loader == nil {
			return nil, invalidPipeline(fmt.Sprintf("node %s includes pipeline %q but no loader is configured", nd.Name, nd.Pipeline))
		}
		subDef, err := b.loader.Load(nd.Pipeline)
		if err != nil {
			return nil, err
		}
		sub, err := b.build(subDef)
		if err != nil {
			return nil, err
		}
		return sub.asTask(nd.Name, a, kw)
	}

	d, err := b.reg.mustDef(nd.Def)
	if err != nil {
		return nil, err
	}
	return d.CallKw(a, kw)
}

func resolveArg(scope map[string]Node, v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$") {
		return v, nil
	}
	if strings.HasPrefix(s, "$$") {
		return s[1:], nil
	}
	return lookup(scope, s[1:])
}

func lookupAll(scope map[string]Node, refs []string) ([]Node, error) {
	nodes := make([]Node, len(refs))
	for i, ref := range refs {
		n, err := lookup(scope, ref)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return nodes, nil
}

// lookup resolves "name" or "name[i]" against already declared nodes.
func lookup(scope map[string]Node, ref string) (Node, error) {
	name, index, indexed := splitRef(ref)
	n, ok := scope[name]
	if !ok {
		return nil, errors.NotFound("node", name).WithCause(ErrInvalidPipeline)
	}
	if !indexed {
		return n, nil
	}
	t, ok := n.(*Task)
	if !ok {
		return nil, invalidPipeline(fmt.Sprintf("%s is not a task, cannot take output %d", name, index))
	}
	return t.Ref(index)
}

func splitRef(ref string) (name string, index int, indexed bool) {
	open := strings.LastIndexByte(ref, '[')
	if open <= 0 || !strings.HasSuffix(ref, "]") {
		return ref, 0, false
	}
	i, err := strconv.Atoi(ref[open+1 : len(ref)-1])
	if err != nil {
		return ref, 0, false
	}
	return ref[:open], i, true
}

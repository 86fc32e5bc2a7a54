package dag

import (
	"context"
	"strings"

	"github.com/kbukum/dagpipe/args"
)

// Outline returns a registry of placeholder definitions under which def,
// and every pipeline it includes through loader, can be built without the
// real implementations. Placeholders accept any arguments and declare as
// many outputs as the definitions reference. They return nil, or a slice of
// nils when they declare more than one output. Stop conditions
// never fire. Use it to validate or render definitions offline.
func Outline(def *Definition, loader Loader) *Registry {
	o := &outliner{loader: loader, outputs: make(map[string]int), conditions: make(map[string]bool), seen: make(map[string]bool)}
	o.walk(def)

	reg := NewRegistry()
	for _, name := range sortedKeys(o.outputs) {
		n := o.outputs[name]
		reg.Register(Define(name, args.Any(), placeholder(n), Outputs(n)))
	}
	for _, name := range sortedKeys(o.conditions) {
		reg.RegisterCondition(name, func(any) bool { return false })
	}
	return reg
}

func placeholder(outputs int) Func {
	return func(context.Context, []any, map[string]any) (any, error) {
		if outputs > 1 {
			return make([]any, outputs), nil
		}
		return nil, nil
	}
}

type outliner struct {
	loader     Loader
	outputs    map[string]int
	conditions map[string]bool
	seen       map[string]bool
}

func (o *outliner) walk(def *Definition) {
	if def == nil || o.seen[def.Name] {
		return
	}
	o.seen[def.Name] = true

	defOf := make(map[string]string)
	for _, nd := range def.Nodes {
		if nd.Def != "" {
			defOf[nd.Name] = nd.Def
			o.need(nd.Def, max(len(nd.Outputs), 1))
		}
	}
	use := func(ref string) {
		name, index, indexed := splitRef(ref)
		if d, ok := defOf[name]; ok && indexed {
			o.need(d, index+1)
		}
	}
	for _, nd := range def.Nodes {
		for _, v := range nd.Args {
			if s, ok := v.(string); ok && strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "$$") {
				use(s[1:])
			}
		}
		for _, v := range nd.Kwargs {
			if s, ok := v.(string); ok && strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "$$") {
				use(s[1:])
			}
		}
		if nd.Pipeline != "" && o.loader != nil {
			if sub, err := o.loader.Load(nd.Pipeline); err == nil {
				o.walk(sub)
			}
		}
	}
	for _, ref := range def.Outputs {
		use(ref)
	}
	for _, s := range def.Stops {
		o.conditions[s.Condition] = true
	}
}

func (o *outliner) need(def string, outputs int) {
	if outputs > o.outputs[def] {
		o.outputs[def] = outputs
	}
}

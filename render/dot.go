package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/dagpipe/dag"
)

// DOT renders the ordered nodes of p and their argument edges as a Graphviz
// digraph. Inputs are drawn as ellipses, outputs with a double border, refs
// as small boxes labeled with their slot, and nested pipelines as folders.
func DOT(p *dag.Pipeline) string {
	roles := rolesOf(p)

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", strconv.Quote(p.Name()))
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	for _, n := range p.Nodes() {
		attrs := []string{"label=" + strconv.Quote(label(n))}
		switch {
		case roles[n.ID()].input:
			attrs = append(attrs, "shape=ellipse")
		case kindOf(n) == kindNested:
			attrs = append(attrs, "shape=folder")
		case kindOf(n) == kindRef:
			attrs = append(attrs, "shape=box", "style=rounded")
		}
		if roles[n.ID()].output {
			attrs = append(attrs, "peripheries=2")
		}
		if roles[n.ID()].stop {
			attrs = append(attrs, "color=red")
		}
		fmt.Fprintf(&b, "  %s [%s];\n", nodeID(n), strings.Join(attrs, " "))
	}
	for _, n := range p.Nodes() {
		for _, in := range n.Inputs() {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeID(in), nodeID(n))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func nodeID(n dag.Node) string {
	return "n" + strconv.FormatUint(n.ID(), 10)
}

func label(n dag.Node) string {
	if r, ok := n.(*dag.Ref); ok && r.Name() != fmt.Sprintf("%s[%d]", r.Owner().Name(), r.Index()) {
		return fmt.Sprintf("%s\n%s[%d]", r.Name(), r.Owner().Name(), r.Index())
	}
	return n.Name()
}

type role struct {
	input  bool
	output bool
	stop   bool
}

func rolesOf(p *dag.Pipeline) map[uint64]role {
	roles := make(map[uint64]role)
	for _, n := range p.Inputs() {
		r := roles[n.ID()]
		r.input = true
		roles[n.ID()] = r
		// An owner used as input is drawn through its refs.
		if t, ok := n.(*dag.Task); ok && t.NumOutputs() > 1 {
			for _, ref := range t.Refs() {
				rr := roles[ref.ID()]
				rr.input = true
				roles[ref.ID()] = rr
			}
		}
	}
	for _, n := range p.Outputs() {
		r := roles[n.ID()]
		r.output = true
		roles[n.ID()] = r
	}
	stops := make(map[string]bool)
	for _, name := range p.Stops() {
		stops[name] = true
	}
	for _, n := range p.Nodes() {
		if stops[n.Name()] {
			r := roles[n.ID()]
			r.stop = true
			roles[n.ID()] = r
		}
	}
	return roles
}

type kind string

const (
	kindTask   kind = "task"
	kindRef    kind = "ref"
	kindNested kind = "pipeline"
	kindOther  kind = "node"
)

func kindOf(n dag.Node) kind {
	switch x := n.(type) {
	case *dag.Ref:
		return kindRef
	case *dag.Task:
		if x.Nested() != nil {
			return kindNested
		}
		return kindTask
	default:
		return kindOther
	}
}

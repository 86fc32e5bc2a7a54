package dag

// arena maps node identity to dense indices for one ordering pass.
type arena struct {
	index map[uint64]int
	nodes []Node
}

func newArena() *arena {
	return &arena{index: make(map[uint64]int)}
}

// add registers n and reports whether it was new.
func (a *arena) add(n Node) (int, bool) {
	if i, ok := a.index[n.ID()]; ok {
		return i, false
	}
	a.index[n.ID()] = len(a.nodes)
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1, true
}

func (a *arena) contains(n Node) bool {
	if _, ok := a.index[n.ID()]; ok {
		return true
	}
	// An owner that only appears through its refs still runs.
	if t, ok := n.(*Task); ok {
		for _, r := range t.refs {
			if _, ok := a.index[r.ID()]; ok {
				return true
			}
		}
	}
	return false
}

// order returns every node reachable from outputs so that each node comes
// after all of its inputs.
//
// The first pass discovers nodes and counts consuming edges per node. The
// second pass starts from outputs nobody consumes, emits a node, and releases
// an input once its last consumer has been emitted. Reversing the emission
// gives the execution order.
func order(outputs []Node) ([]Node, *arena, error) {
	a := newArena()
	var consumers []int

	var stack []int
	for _, out := range outputs {
		if i, added := a.add(out); added {
			consumers = append(consumers, 0)
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, in := range a.nodes[i].Inputs() {
			j, added := a.add(in)
			if added {
				consumers = append(consumers, 0)
				stack = append(stack, j)
			}
			consumers[j]++
		}
	}

	emitted := make([]bool, len(a.nodes))
	for _, out := range outputs {
		i := a.index[out.ID()]
		if consumers[i] == 0 && !emitted[i] {
			emitted[i] = true
			stack = append(stack, i)
		}
	}
	ordered := make([]Node, 0, len(a.nodes))
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ordered = append(ordered, a.nodes[i])
		for _, in := range a.nodes[i].Inputs() {
			j := a.index[in.ID()]
			consumers[j]--
			if consumers[j] == 0 {
				emitted[j] = true
				stack = append(stack, j)
			}
		}
	}

	if len(ordered) != len(a.nodes) {
		return nil, nil, cycle(len(ordered), len(a.nodes))
	}
	for l, r := 0, len(ordered)-1; l < r; l, r = l+1, r-1 {
		ordered[l], ordered[r] = ordered[r], ordered[l]
	}
	return ordered, a, nil
}

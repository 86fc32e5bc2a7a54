package dag

import (
	"context"
	"sync/atomic"
)

// Node is a vertex of a task graph.
type Node interface {
	// ID is a process-unique handle. Nodes compare by ID only.
	ID() uint64
	// Name identifies the node in stops, lookups and logs.
	Name() string
	// Run evaluates the node and caches the result.
	Run(ctx context.Context) (any, error)
	// Result returns the most recent result, nil before the first run.
	Result() any
	// Inputs returns the distinct upstream nodes this node consumes.
	Inputs() []Node
	// Update rebinds literal arguments before the next run.
	Update(args []any, kwargs map[string]any) error
}

var lastID atomic.Uint64

func nextID() uint64 { return lastID.Add(1) }

// Value is a bound argument: either a literal or a reference to another node.
type Value struct {
	node Node
	lit  any
}

// Literal wraps a plain value.
func Literal(v any) Value { return Value{lit: v} }

// Reference wraps an upstream node.
func Reference(n Node) Value { return Value{node: n} }

// valueOf classifies an argument supplied by the caller.
func valueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case Node:
		if x != nil {
			return Reference(x)
		}
	}
	return Literal(v)
}

// IsNode reports whether the value references a node.
func (v Value) IsNode() bool { return v.node != nil }

// Node returns the referenced node, nil for literals.
func (v Value) Node() Node { return v.node }

// Literal returns the literal value, nil for references.
func (v Value) Literal() any { return v.lit }

// Resolve returns the literal or the referenced node's current result.
func (v Value) Resolve() any {
	if v.node != nil {
		return v.node.Result()
	}
	return v.lit
}

// resolve unwraps a bound slot. Defaults filled at call time are raw values.
func resolve(v any) any {
	if val, ok := v.(Value); ok {
		return val.Resolve()
	}
	return v
}

func isNodeValue(v any) bool {
	val, ok := v.(Value)
	return ok && val.IsNode()
}

// appendInput adds n to inputs unless a node with the same ID is present.
func appendInput(inputs []Node, seen map[uint64]bool, n Node) []Node {
	if seen[n.ID()] {
		return inputs
	}
	seen[n.ID()] = true
	return append(inputs, n)
}

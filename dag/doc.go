// Package dag builds lazy task graphs out of ordinary function calls and runs
// them in dependency order.
//
// Calling a Def does not invoke its function. It returns a Task that captures
// the arguments; arguments that are themselves nodes become graph edges. A
// Pipeline walks those edges back from its outputs, orders every reachable
// node once, and evaluates the order on each run:
//
//	addOne := dag.MustDefineFunc("add_one", func(x int) int { return x + 1 }, "x")
//	p, _ := dag.Sequential(addOne, addOne, addOne)
//	out, _ := p.Run(ctx, 0) // []any{3}
//
// Tasks with several outputs hand out one Ref per output slot. Refs share
// their owner's round tracker so the owner runs once per pipeline run no
// matter how many of its refs are consumed.
//
// Cross-cutting behavior (logging, tracing, metrics) is attached per step
// with Middleware, and pipelines can also be declared in YAML and resolved
// against a Registry of named definitions.
package dag

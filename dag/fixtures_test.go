package dag_test

import (
	"context"

	"github.com/kbukum/dagpipe/args"
	"github.com/kbukum/dagpipe/dag"
)

var (
	addOne    = dag.MustDefineFunc("add_1", func(x int) int { return x + 1 }, "x")
	doNothing = dag.MustDefineFunc("do_nothing", func(x any) any { return x }, "x")
	appendA   = appender("append_a", "a")
	appendB   = appender("append_b", "b")
	appendC   = appender("append_c", "c")

	splitToTwo = dag.Define("split_to_two", args.Names("x"),
		func(_ context.Context, pos []any, _ map[string]any) (any, error) {
			x := pos[0].([]any)
			return []any{x[0], x[1]}, nil
		})

	zipTwoInputs = dag.MustDefineFunc("zip_two_inputs", func(a, b any) []any { return []any{a, b} }, "a", "b")

	zipInputs = dag.Define("zip_inputs", args.MustSignature(args.Rest("inputs")),
		func(_ context.Context, pos []any, _ map[string]any) (any, error) {
			return append([]any(nil), pos...), nil
		})
)

func appender(name, suffix string) *dag.Def {
	return dag.MustDefineFunc(name, func(x any) []any { return []any{x, suffix} }, "x")
}

// executionCounter counts how often its method-style definition runs.
type executionCounter struct {
	calls int
}

func (c *executionCounter) passThroughDef() *dag.Def {
	return dag.DefineMethod(c, "pass_through", args.Names("x"),
		func(_ context.Context, pos []any, _ map[string]any) (any, error) {
			pos[0].(*executionCounter).calls++
			return pos[1], nil
		})
}

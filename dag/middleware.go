package dag

import (
	"context"
)

// StepFunc evaluates one node of a run.
type StepFunc func(ctx context.Context, node Node) (any, error)

// Middleware wraps a StepFunc with cross-cutting behavior.
type Middleware func(StepFunc) StepFunc

// Chain composes middlewares. The first middleware is outermost.
//
// Chain(a, b, c)(step) is equivalent to a(b(c(step))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner StepFunc) StepFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// StepInfo describes the step being evaluated.
type StepInfo struct {
	Pipeline string
	RunID    string
	Index    int
}

type stepInfoKey struct{}

func withStepInfo(ctx context.Context, info StepInfo) context.Context {
	return context.WithValue(ctx, stepInfoKey{}, info)
}

// StepInfoFromContext returns the step a middleware is wrapping.
func StepInfoFromContext(ctx context.Context) (StepInfo, bool) {
	info, ok := ctx.Value(stepInfoKey{}).(StepInfo)
	return info, ok
}

// runStep is the innermost StepFunc. Tasks evaluate once per round.
func runStep(ctx context.Context, node Node) (any, error) {
	if t, ok := node.(*Task); ok {
		return t.step(ctx)
	}
	return node.Run(ctx)
}

package dagtest

import (
	"context"
	"sync"

	"github.com/kbukum/dagpipe/args"
	"github.com/kbukum/dagpipe/dag"
)

// Mock is a configurable test definition. It records calls and returns a
// preset output or error.
type Mock struct {
	def    *dag.Def
	output any
	err    error
	fn     dag.Func

	mu      sync.Mutex
	calls   int
	lastPos []any
	lastKw  map[string]any
}

// NewMock creates a mock definition accepting any arguments that returns the
// given output. If err is non-nil, every call fails with that error.
func NewMock(name string, output any, err error, opts ...dag.DefOption) *Mock {
	m := &Mock{output: output, err: err}
	m.def = dag.Define(name, args.Any(), m.call, opts...)
	return m
}

// NewMockFunc creates a mock definition backed by a custom function.
func NewMockFunc(name string, sig args.Signature, fn dag.Func, opts ...dag.DefOption) *Mock {
	m := &Mock{fn: fn}
	m.def = dag.Define(name, sig, m.call, opts...)
	return m
}

func (m *Mock) call(ctx context.Context, pos []any, kw map[string]any) (any, error) {
	m.mu.Lock()
	m.calls++
	m.lastPos = append([]any(nil), pos...)
	m.lastKw = kw
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(ctx, pos, kw)
	}
	return m.output, m.err
}

// Def returns the definition to build tasks from.
func (m *Mock) Def() *dag.Def { return m.def }

// Calls returns how many times the definition was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastArgs returns the resolved arguments of the most recent call.
func (m *Mock) LastArgs() ([]any, map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPos, m.lastKw
}

// Reset clears the call counter.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.lastPos, m.lastKw = nil, nil
}

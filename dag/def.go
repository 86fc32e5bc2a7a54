package dag

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	"github.com/kbukum/dagpipe/args"
)

// Func is the deferred operation behind a Def. Arguments arrive resolved:
// upstream nodes are replaced by their results and defaults are filled.
type Func func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Def is a task definition. Calling it builds a Task without running fn.
type Def struct {
	name    string
	sig     args.Signature
	fn      Func
	outputs int
	owner   any
	method  string
	nested  *Pipeline
}

// DefOption configures a Def.
type DefOption func(*Def)

// Outputs declares how many discrete outputs the definition produces.
func Outputs(n int) DefOption {
	return func(d *Def) {
		if n > 0 {
			d.outputs = n
		}
	}
}

// Named overrides the default task name.
func Named(name string) DefOption {
	return func(d *Def) { d.name = name }
}

// Define wraps fn as a task definition with the given signature. An empty
// name falls back to the Go symbol of fn.
func Define(name string, sig args.Signature, fn Func, opts ...DefOption) *Def {
	d := &Def{name: name, sig: sig, fn: fn, outputs: 1}
	for _, opt := range opts {
		opt(d)
	}
	if d.name == "" {
		d.name = funcName(fn)
	}
	return d
}

// DefineMethod wraps a method-style operation. The owner is passed to fn as
// the first positional argument on every call and is not part of sig.
func DefineMethod(owner any, method string, sig args.Signature, fn Func, opts ...DefOption) *Def {
	d := &Def{sig: sig, fn: fn, outputs: 1, owner: owner, method: method}
	for _, opt := range opts {
		opt(d)
	}
	if d.name == "" {
		d.name = methodName(owner, method)
	}
	return d
}

// Name returns the default name given to tasks built from the definition.
func (d *Def) Name() string { return d.name }

// Signature returns the declared parameters.
func (d *Def) Signature() args.Signature { return d.sig }

// NumOutputs returns the declared output count.
func (d *Def) NumOutputs() int { return d.outputs }

// Call builds a task from positional arguments.
func (d *Def) Call(a ...any) (*Task, error) {
	return d.CallKw(a, nil)
}

// CallKw builds a task from positional and keyword arguments. Arguments that
// are nodes become edges; everything else is stored as a literal.
func (d *Def) CallKw(a []any, kw map[string]any) (*Task, error) {
	return newTask(d, a, kw)
}

// MustCall is like Call but panics on a binding error.
func (d *Def) MustCall(a ...any) *Task {
	t, err := d.Call(a...)
	if err != nil {
		panic(err)
	}
	return t
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "task"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "task"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

func methodName(owner any, method string) string {
	t := reflect.TypeOf(owner)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	typeName := "nil"
	if t != nil {
		typeName = t.Name()
		if typeName == "" {
			typeName = t.String()
		}
	}
	if method == "" {
		return typeName
	}
	return typeName + "." + method
}

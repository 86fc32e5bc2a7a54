package dag

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/kbukum/dagpipe/args"
	"github.com/kbukum/dagpipe/errors"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// DefineFunc adapts a plain Go function. An optional leading context.Context
// receives the run context and an optional trailing error is returned as the
// task error. params names the remaining parameters in order; missing names
// default to arg0, arg1 and so on. A variadic Go function maps its last
// parameter to a variadic task parameter.
//
// A function with several non-error results yields a []any result and
// declares one output per result unless Outputs overrides it.
func DefineFunc(name string, fn any, params ...string) (*Def, error) {
	return DefineFuncOpts(name, fn, params)
}

// MustDefineFunc is like DefineFunc but panics when fn cannot be adapted.
func MustDefineFunc(name string, fn any, params ...string) *Def {
	d, err := DefineFunc(name, fn, params...)
	if err != nil {
		panic(err)
	}
	return d
}

// DefineFuncOpts is DefineFunc with definition options.
func DefineFuncOpts(name string, fn any, params []string, opts ...DefOption) (*Def, error) {
	a, err := newAdapter(fn)
	if err != nil {
		return nil, err
	}
	sig, err := a.signature(params)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = funcName(fn)
	}
	opts = append([]DefOption{Outputs(a.results)}, opts...)
	return Define(name, sig, a.call, opts...), nil
}

type adapter struct {
	fn       reflect.Value
	typ      reflect.Type
	takesCtx bool
	hasErr   bool
	results  int
	in       []reflect.Type
}

func newAdapter(fn any) (*adapter, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, errors.Newf(errors.ErrCodeInvalidArgument, "DefineFunc needs a function, got %T", fn)
	}
	t := v.Type()
	a := &adapter{fn: v, typ: t}
	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		a.takesCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		a.in = append(a.in, t.In(i))
	}
	a.results = t.NumOut()
	if a.results > 0 && t.Out(a.results-1) == errorType {
		a.hasErr = true
		a.results--
	}
	if a.results == 0 {
		a.results = 1
	}
	return a, nil
}

func (a *adapter) signature(names []string) (args.Signature, error) {
	if len(names) > len(a.in) {
		return args.Signature{}, errors.Newf(errors.ErrCodeInvalidArgument,
			"%d parameter names given for %d parameters", len(names), len(a.in))
	}
	params := make([]args.Param, len(a.in))
	for i := range a.in {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) {
			name = names[i]
		}
		if a.typ.IsVariadic() && i == len(a.in)-1 {
			params[i] = args.Rest(name)
		} else {
			params[i] = args.Pos(name)
		}
	}
	return args.NewSignature(params...)
}

func (a *adapter) call(ctx context.Context, pos []any, _ map[string]any) (any, error) {
	in := make([]reflect.Value, 0, len(pos)+1)
	if a.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	fixed := len(a.in)
	if a.typ.IsVariadic() {
		fixed--
	}
	if len(pos) < fixed {
		return nil, errors.Newf(errors.ErrCodeMissingArgument, "want %d arguments, got %d", fixed, len(pos))
	}
	for i, v := range pos {
		var target reflect.Type
		if i < fixed {
			target = a.in[i]
		} else {
			target = a.in[fixed].Elem()
		}
		rv, err := convert(v, target)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidArgument, "argument %d: %v", i, err)
		}
		in = append(in, rv)
	}

	out := a.fn.Call(in)
	if a.hasErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		res := make([]any, len(out))
		for i, o := range out {
			res[i] = o.Interface()
		}
		return res, nil
	}
}

func convert(v any, target reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(target):
		if target.Kind() == reflect.Interface {
			out := reflect.New(target).Elem()
			out.Set(rv)
			return out, nil
		}
		return rv, nil
	case rv.Type().ConvertibleTo(target) && rv.Kind() != reflect.String && target.Kind() != reflect.String:
		out := rv.Convert(target)
		if numeric(rv.Kind()) && numeric(target.Kind()) && !fits(rv, out) {
			return reflect.Value{}, fmt.Errorf("%v does not fit in %s", v, target)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, target)
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// fits reports whether converting from into to kept the value. Between
// float kinds only overflow to infinity counts; rounding is allowed.
func fits(from, to reflect.Value) bool {
	if isFloat(from.Kind()) && isFloat(to.Kind()) {
		return math.IsInf(from.Float(), 0) || !math.IsInf(to.Float(), 0)
	}
	if isFloat(from.Kind()) && math.IsNaN(from.Float()) {
		return false
	}
	return to.Convert(from.Type()).Equal(from)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

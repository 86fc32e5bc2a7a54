package args

import (
	"fmt"
	"strings"

	"github.com/kbukum/dagpipe/errors"
)

// Kind classifies how a parameter accepts values.
type Kind int

const (
	// Positional accepts a value by position or by keyword.
	Positional Kind = iota
	// Variadic collects positional overflow.
	Variadic
	// KeywordOnly accepts a value only by keyword.
	KeywordOnly
	// VarKeyword collects keywords that match no other parameter.
	VarKeyword
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case Variadic:
		return "variadic"
	case KeywordOnly:
		return "keyword-only"
	case VarKeyword:
		return "var-keyword"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param declares one parameter of a Signature.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Pos declares a required positional-or-keyword parameter.
func Pos(name string) Param { return Param{Name: name, Kind: Positional} }

// Opt declares a positional-or-keyword parameter with a default.
func Opt(name string, def any) Param {
	return Param{Name: name, Kind: Positional, Default: def, HasDefault: true}
}

// Rest declares a variadic parameter.
func Rest(name string) Param { return Param{Name: name, Kind: Variadic} }

// Kw declares a required keyword-only parameter.
func Kw(name string) Param { return Param{Name: name, Kind: KeywordOnly} }

// KwOpt declares a keyword-only parameter with a default.
func KwOpt(name string, def any) Param {
	return Param{Name: name, Kind: KeywordOnly, Default: def, HasDefault: true}
}

// Extra declares a variadic-keyword parameter.
func Extra(name string) Param { return Param{Name: name, Kind: VarKeyword} }

// Signature is an ordered parameter list.
type Signature struct {
	params     []Param
	index      map[string]int
	variadic   int
	varKeyword int
}

// NewSignature validates the parameter order
// (positional, variadic, keyword-only, var-keyword) and name uniqueness.
func NewSignature(params ...Param) (Signature, error) {
	s := Signature{
		params:     append([]Param(nil), params...),
		index:      make(map[string]int, len(params)),
		variadic:   -1,
		varKeyword: -1,
	}
	last := Positional
	seenDefault := false
	for i, p := range params {
		if p.Name == "" {
			return Signature{}, invalidSignature("parameter %d has no name", i)
		}
		if _, dup := s.index[p.Name]; dup {
			return Signature{}, invalidSignature("duplicate parameter %q", p.Name)
		}
		if p.Kind < last {
			return Signature{}, invalidSignature("%s parameter %q after %s parameter", p.Kind, p.Name, last)
		}
		switch p.Kind {
		case Positional:
			if seenDefault && !p.HasDefault {
				return Signature{}, invalidSignature("required parameter %q follows a parameter with a default", p.Name)
			}
			seenDefault = seenDefault || p.HasDefault
		case Variadic:
			if s.variadic >= 0 {
				return Signature{}, invalidSignature("more than one variadic parameter")
			}
			s.variadic = i
		case VarKeyword:
			if s.varKeyword >= 0 {
				return Signature{}, invalidSignature("more than one var-keyword parameter")
			}
			s.varKeyword = i
		}
		s.index[p.Name] = i
		last = p.Kind
	}
	return s, nil
}

// MustSignature is like NewSignature but panics on an invalid declaration.
func MustSignature(params ...Param) Signature {
	s, err := NewSignature(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names declares a signature of required positional parameters.
func Names(names ...string) Signature {
	params := make([]Param, len(names))
	for i, n := range names {
		params[i] = Pos(n)
	}
	return MustSignature(params...)
}

// Any declares a signature that accepts everything: (args..., kwargs...).
func Any() Signature {
	return MustSignature(Rest("args"), Extra("kwargs"))
}

// Params returns a copy of the declared parameters.
func (s Signature) Params() []Param {
	return append([]Param(nil), s.params...)
}

// Param looks up a parameter by name.
func (s Signature) Param(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// HasVariadic reports whether the signature collects positional overflow.
func (s Signature) HasVariadic() bool { return s.variadic >= 0 }

// HasVarKeyword reports whether the signature collects unknown keywords.
func (s Signature) HasVarKeyword() bool { return s.varKeyword >= 0 }

// String renders the signature as "(x, scale=1, *more, **opts)".
func (s Signature) String() string {
	parts := make([]string, 0, len(s.params))
	for _, p := range s.params {
		switch p.Kind {
		case Variadic:
			parts = append(parts, "*"+p.Name)
		case VarKeyword:
			parts = append(parts, "**"+p.Name)
		default:
			if p.HasDefault {
				parts = append(parts, fmt.Sprintf("%s=%v", p.Name, p.Default))
			} else {
				parts = append(parts, p.Name)
			}
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Signature) positional() []Param {
	var out []Param
	for _, p := range s.params {
		if p.Kind == Positional {
			out = append(out, p)
		}
	}
	return out
}

func invalidSignature(format string, a ...any) error {
	return errors.Newf(errors.ErrCodeInvalidArgument, "invalid signature: "+format, a...).
		WithCause(ErrInvalidSignature)
}

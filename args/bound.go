package args

import "sort"

// Bound holds the values bound to a Signature's parameters.
//
// Positional and keyword-only parameters hold a single value each; the
// variadic parameter holds a slice; the var-keyword parameter holds a map.
type Bound struct {
	sig         Signature
	values      map[string]any
	variadic    []any
	hasVariadic bool
	extra       map[string]any
}

// NewBound returns an empty binding for sig.
func NewBound(sig Signature) *Bound {
	return &Bound{sig: sig, values: make(map[string]any), extra: make(map[string]any)}
}

// Bind binds a call's positional and keyword values. Parameters not
// supplied stay unbound.
func (s Signature) Bind(pos []any, kw map[string]any) (*Bound, error) {
	b := NewBound(s)
	params := s.positional()

	for i, v := range pos {
		if i < len(params) {
			b.values[params[i].Name] = v
			continue
		}
		if !s.HasVariadic() {
			return nil, tooManyPositional(len(params), len(pos))
		}
		b.variadic = append(b.variadic, v)
		b.hasVariadic = true
	}

	for _, name := range sortedKeys(kw) {
		v := kw[name]
		p, ok := s.Param(name)
		if ok && (p.Kind == Positional || p.Kind == KeywordOnly) {
			if _, dup := b.values[name]; dup {
				return nil, duplicateArgument(name)
			}
			b.values[name] = v
			continue
		}
		if !s.HasVarKeyword() {
			return nil, unexpectedKeyword(name)
		}
		b.extra[name] = v
	}
	return b, nil
}

// Normalize binds a call and returns it in canonical order: positional
// parameters as positional values while they are contiguously bound,
// everything else as keywords.
func (s Signature) Normalize(pos []any, kw map[string]any) ([]any, map[string]any, error) {
	b, err := s.Bind(pos, kw)
	if err != nil {
		return nil, nil, err
	}
	outPos, outKw := b.Canonical()
	return outPos, outKw, nil
}

// Signature returns the signature this binding belongs to.
func (b *Bound) Signature() Signature { return b.sig }

// Get returns the value bound to a positional or keyword-only parameter.
func (b *Bound) Get(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Set binds a positional or keyword-only parameter.
func (b *Bound) Set(name string, v any) {
	b.values[name] = v
}

// Variadic returns the values bound to the variadic parameter.
func (b *Bound) Variadic() ([]any, bool) {
	return b.variadic, b.hasVariadic
}

// SetVariadic binds the variadic parameter.
func (b *Bound) SetVariadic(values []any) {
	b.variadic = values
	b.hasVariadic = true
}

// SetExtra binds a var-keyword entry.
func (b *Bound) SetExtra(key string, v any) {
	b.extra[key] = v
}

// Extra returns the value bound to an unknown keyword.
func (b *Bound) Extra(key string) (any, bool) {
	v, ok := b.extra[key]
	return v, ok
}

// Names returns the bound positional and keyword-only parameter names in
// declaration order.
func (b *Bound) Names() []string {
	var names []string
	for _, p := range b.sig.params {
		if _, ok := b.values[p.Name]; ok {
			names = append(names, p.Name)
		}
	}
	return names
}

// ExtraKeys returns the var-keyword keys in sorted order.
func (b *Bound) ExtraKeys() []string {
	return sortedKeys(b.extra)
}

// Merge copies every value bound in other onto b. A bound variadic in other
// replaces b's variadic; extra keywords merge key by key.
func (b *Bound) Merge(other *Bound) {
	for k, v := range other.values {
		b.values[k] = v
	}
	if other.hasVariadic {
		b.variadic = append([]any(nil), other.variadic...)
		b.hasVariadic = true
	}
	for k, v := range other.extra {
		b.extra[k] = v
	}
}

// Values returns every bound value in declaration order; extra keywords
// follow in key order.
func (b *Bound) Values() []any {
	var out []any
	for _, p := range b.sig.params {
		switch p.Kind {
		case Variadic:
			out = append(out, b.variadic...)
		case VarKeyword:
			for _, k := range b.ExtraKeys() {
				out = append(out, b.extra[k])
			}
		default:
			if v, ok := b.values[p.Name]; ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// Canonical returns the bound values as a positional list and a keyword map
// without filling defaults. Positional parameters are emitted positionally up
// to the first unbound one; later bound positionals move to keywords and the
// variadic values are dropped from the positional list only if a gap precedes
// them.
func (b *Bound) Canonical() ([]any, map[string]any) {
	var pos []any
	kw := make(map[string]any)
	gap := false
	for _, p := range b.sig.params {
		switch p.Kind {
		case Positional:
			v, ok := b.values[p.Name]
			switch {
			case !ok:
				gap = true
			case gap:
				kw[p.Name] = v
			default:
				pos = append(pos, v)
			}
		case Variadic:
			if !gap {
				pos = append(pos, b.variadic...)
			}
		case KeywordOnly:
			if v, ok := b.values[p.Name]; ok {
				kw[p.Name] = v
			}
		case VarKeyword:
			for k, v := range b.extra {
				kw[k] = v
			}
		}
	}
	return pos, kw
}

// Complete returns the call-ready positional values and keywords, filling
// defaults and failing on any required parameter left unbound.
func (b *Bound) Complete() ([]any, map[string]any, error) {
	var pos []any
	kw := make(map[string]any)
	for _, p := range b.sig.params {
		switch p.Kind {
		case Positional:
			v, ok := b.values[p.Name]
			if !ok {
				if !p.HasDefault {
					return nil, nil, missingArgument(p.Name, p.Kind)
				}
				v = p.Default
			}
			pos = append(pos, v)
		case Variadic:
			pos = append(pos, b.variadic...)
		case KeywordOnly:
			v, ok := b.values[p.Name]
			if !ok {
				if !p.HasDefault {
					return nil, nil, missingArgument(p.Name, p.Kind)
				}
				v = p.Default
			}
			kw[p.Name] = v
		case VarKeyword:
			for k, v := range b.extra {
				kw[k] = v
			}
		}
	}
	return pos, kw, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

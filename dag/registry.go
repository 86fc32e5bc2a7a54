package dag

import (
	"sort"
	"sync"

	"github.com/kbukum/dagpipe/errors"
)

// Registry provides named lookup of definitions and stop conditions for
// pipelines built from YAML definitions.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]*Def
	conditions map[string]StopFunc
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:       make(map[string]*Def),
		conditions: make(map[string]StopFunc),
	}
}

// Register adds a definition under its own name.
func (r *Registry) Register(defs ...*Def) *Registry {
	for _, d := range defs {
		r.RegisterAs(d.Name(), d)
	}
	return r
}

// RegisterAs adds a definition under the given name.
func (r *Registry) RegisterAs(name string, d *Def) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[name] = d
	return r
}

// RegisterCondition adds a named stop condition.
func (r *Registry) RegisterCondition(name string, pred StopFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[name] = pred
	return r
}

// Get retrieves a definition by name.
func (r *Registry) Get(name string) (*Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Condition retrieves a stop condition by name.
func (r *Registry) Condition(name string) (StopFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pred, ok := r.conditions[name]
	return pred, ok
}

func (r *Registry) mustDef(name string) (*Def, error) {
	d, ok := r.Get(name)
	if !ok {
		return nil, errors.NotFound("definition", name)
	}
	return d, nil
}

// List returns sorted names of all registered definitions.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.defs)
}

// Conditions returns sorted names of all registered stop conditions.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.conditions)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package operations

import (
	"sort"

	"github.com/rahul/abacus/internal/fault"
)

// Resolver looks up operations by name.
type Resolver interface {
	Resolve(name string) (Operation, error)
}

// Registry manages the set of available operations.
type Registry struct {
	ops map[string]Operation
}

func NewRegistry() *Registry {
	return &Registry{
		ops: make(map[string]Operation),
	}
}

// NewDefaultRegistry returns a registry holding the built-in arithmetic,
// power and statistics operations.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, op := range Basic() {
		r.Register(op)
	}
	for _, op := range Advanced() {
		r.Register(op)
	}
	for _, op := range Statistics() {
		r.Register(op)
	}
	return r
}

// Register adds op, replacing any operation already registered under the
// same name.
func (r *Registry) Register(op Operation) {
	r.ops[op.Name()] = op
}

func (r *Registry) Resolve(name string) (Operation, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fault.Newf(fault.KindUnknownOperation, "unknown operation %q", name)
	}
	return op, nil
}

// List returns the registered operations sorted by name.
func (r *Registry) List() []Operation {
	out := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Names returns the registered operation names in sorted order.
func (r *Registry) Names() []string {
	ops := r.List()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name()
	}
	return names
}

package fibonacci

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps algorithm names to calculators.
type Registry struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{calculators: make(map[string]Calculator)}
}

// NewDefaultRegistry returns a registry holding the native calculators
// configured with the given policy and batch worker count.
func NewDefaultRegistry(policy Policy, workers int) *Registry {
	r := NewRegistry()
	r.Register(&IterativeCalculator{Policy: policy, Workers: workers})
	r.Register(&DoublingCalculator{Policy: policy})
	r.Register(&RecursiveCalculator{})
	return r
}

// Register adds or replaces a calculator under its Name.
func (r *Registry) Register(c Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculators[c.Name()] = c
}

// Get returns the calculator registered under name.
func (r *Registry) Get(name string) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calculators[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q", name)
	}
	return c, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.calculators))
	for name := range r.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns every calculator, ordered by name.
func (r *Registry) GetAll() []Calculator {
	names := r.List()
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Calculator, 0, len(names))
	for _, name := range names {
		all = append(all, r.calculators[name])
	}
	return all
}

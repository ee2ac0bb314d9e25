package actions

import (
	"fmt"
	"sync"
)

// Registry maps action kinds to their executors. Safe for concurrent reads;
// Register is meant for startup only.
type Registry struct {
	mu        sync.RWMutex
	executors map[Kind]Executor
}

func NewRegistry() *Registry {
	return &Registry{executors: make(map[Kind]Executor)}
}

// Register adds an executor. Panics on a duplicate kind to surface
// misconfiguration at startup instead of at dispatch time.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[e.Type()]; exists {
		panic(fmt.Sprintf("action registry: duplicate kind %q", e.Type()))
	}
	r.executors[e.Type()] = e
}

// Get returns the executor for the given kind.
func (r *Registry) Get(kind Kind) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[kind]
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("no executor registered for action type %q", kind)}
	}
	return e, nil
}

// Kinds returns all registered action kinds.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.executors))
	for k := range r.executors {
		out = append(out, k)
	}
	return out
}

package sync

import (
	syncdomain "github.com/storeops/backend/internal/domain/sync"
)

// Registry is a static mutator registry keyed by operation type
type Registry struct {
	mutators map[syncdomain.OperationType]Mutator
}

// NewRegistry creates a registry from the given mutators
func NewRegistry(mutators ...Mutator) *Registry {
	r := &Registry{mutators: make(map[syncdomain.OperationType]Mutator, len(mutators))}
	for _, m := range mutators {
		r.mutators[m.OperationType()] = m
	}
	return r
}

// Resolve returns the mutator for an operation type
func (r *Registry) Resolve(opType syncdomain.OperationType) (Mutator, bool) {
	m, ok := r.mutators[opType]
	return m, ok
}

var _ MutatorRegistry = (*Registry)(nil)

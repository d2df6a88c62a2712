// Package protocols holds the protocol adapter registry and the built-in
// adapters that read positions from on-chain state.
package protocols

import (
	"sort"
	"sync"

	"defolio/internal/app/port"
	"defolio/internal/domain/entity"
)

// Registry is a concurrency-safe catalog of protocol adapters keyed by
// protocol id. Registration normally happens once at startup, but Register
// may be called at any time and replaces an existing adapter with the same
// id.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]port.ProtocolAdapter
	order    []string
}

// NewRegistry returns an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]port.ProtocolAdapter)}
}

// Register inserts the adapter, replacing any previous adapter with the
// same protocol id.
func (r *Registry) Register(adapter port.ProtocolAdapter) {
	id := adapter.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[id]; !exists {
		r.order = append(r.order, id)
	}
	r.adapters[id] = adapter
}

// Get returns the adapter registered under the given protocol id.
func (r *Registry) Get(id string) (port.ProtocolAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[id]
	return adapter, ok
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []port.ProtocolAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]port.ProtocolAdapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// ForChain returns the adapters that support the given chain, in
// registration order.
func (r *Registry) ForChain(chainID entity.ChainID) []port.ProtocolAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []port.ProtocolAdapter
	for _, id := range r.order {
		adapter := r.adapters[id]
		for _, supported := range adapter.SupportedChains() {
			if supported == chainID {
				out = append(out, adapter)
				break
			}
		}
	}
	return out
}

// ByCategory returns the registered adapters in the given category, sorted
// by protocol id.
func (r *Registry) ByCategory(category entity.ProtocolCategory) []port.ProtocolAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []port.ProtocolAdapter
	for _, adapter := range r.adapters {
		if adapter.Info().Category == category {
			out = append(out, adapter)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Info().ID < out[j].Info().ID
	})
	return out
}

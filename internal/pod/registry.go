package pod

import (
	"sort"
	"sync"
)

// Registry is the authoritative in-memory pod store. Pods are inserted on
// creation or reconciliation and never removed; terminated pods remain
// visible with their terminal status and final cost.
type Registry struct {
	mu   sync.RWMutex
	pods map[string]*Pod
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pods: make(map[string]*Pod)}
}

// Insert stores a pod, replacing any previous entry with the same ID.
func (r *Registry) Insert(p *Pod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pods[p.ID] = p
}

// Get returns the pod with the given ID.
func (r *Registry) Get(id string) (*Pod, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pods[id]
	return p, ok
}

// List returns all pods ordered by ID for stable output.
func (r *Registry) List() []*Pod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Pod, 0, len(r.pods))
	for _, p := range r.pods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked pods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pods)
}

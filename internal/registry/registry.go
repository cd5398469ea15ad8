// Package registry implements the live mapping from logical element
// names to mounted UI handles. It is injected into both the feature
// screens (writers) and the tour engine (reader); it owns no business
// state, only presence or absence of handles.
package registry

import (
	"sync"

	"github.com/guidepost-io/guidepost/internal/ports"
)

// Registry is a last-write-wins name → element map with change
// subscription. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	elements map[string]ports.Element
	subs     map[int]func(name string)
	nextSub  int
}

// New creates an empty registry. One registry is constructed per app
// session and shared by injection, never as a package global.
func New() *Registry {
	return &Registry{
		elements: make(map[string]ports.Element),
		subs:     make(map[int]func(string)),
	}
}

// Register binds name to el, replacing any previous binding.
func (r *Registry) Register(name string, el ports.Element) {
	r.mu.Lock()
	r.elements[name] = el
	fns := r.snapshot()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(name)
	}
}

// Unregister removes the binding for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	if _, ok := r.elements[name]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.elements, name)
	fns := r.snapshot()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(name)
	}
}

// Get returns the current binding for name, or nil.
func (r *Registry) Get(name string) ports.Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.elements[name]
}

// OnChange subscribes to mutations. Callbacks run outside the registry
// lock on the mutating goroutine.
func (r *Registry) OnChange(fn func(name string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// snapshot copies the subscriber list under the lock so callbacks can
// safely unsubscribe while being invoked.
func (r *Registry) snapshot() []func(string) {
	fns := make([]func(string), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	return fns
}

// Ensure Registry implements the port.
var _ ports.Registry = (*Registry)(nil)

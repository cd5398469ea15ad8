// Package signals provides an in-memory implementation of the
// ports.Signals contract: a named observable value bus the host feeds
// and the engine's watcher rules subscribe to.
package signals

import (
	"sync"

	"github.com/guidepost-io/guidepost/internal/ports"
)

// Bus is a last-write-wins map of named values with subscription.
// Subscribers are invoked outside the bus lock on the publishing
// goroutine, so callbacks may safely call back into the bus.
type Bus struct {
	mu      sync.RWMutex
	values  map[string]interface{}
	subs    map[string]map[int]func(interface{})
	nextSub int
}

// NewBus creates an empty signal bus.
func NewBus() *Bus {
	return &Bus{
		values: make(map[string]interface{}),
		subs:   make(map[string]map[int]func(interface{})),
	}
}

// Set publishes a new value for a signal and notifies subscribers.
func (b *Bus) Set(name string, value interface{}) {
	b.mu.Lock()
	b.values[name] = value
	fns := make([]func(interface{}), 0, len(b.subs[name]))
	for _, fn := range b.subs[name] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Get returns the current value of a signal, if it was ever set.
func (b *Bus) Get(name string) (interface{}, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[name]
	return v, ok
}

// Subscribe registers fn for future values of the signal.
func (b *Bus) Subscribe(name string, fn func(interface{})) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	if b.subs[name] == nil {
		b.subs[name] = make(map[int]func(interface{}))
	}
	b.subs[name][id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[name], id)
		b.mu.Unlock()
	}
}

// Ensure Bus implements the port.
var _ ports.Signals = (*Bus)(nil)

package engine

import (
	"context"
	"time"

	"github.com/guidepost-io/guidepost/internal/ports"
)

// Resolver locates a currently mounted, laid-out element by its logical
// name. Elements mount asynchronously behind animations and modals, so
// resolution waits: registry change notifications are the primary wakeup
// and a bounded poll is the safety net.
type Resolver struct {
	registry ports.Registry
	poll     time.Duration
}

// NewResolver creates a resolver polling at the given interval.
func NewResolver(registry ports.Registry, poll time.Duration) *Resolver {
	if poll <= 0 {
		poll = DefaultTuning().PollInterval
	}
	return &Resolver{registry: registry, poll: poll}
}

// Resolve waits until the named element is registered and reports
// non-zero bounds, or until ctx is done. A miss is not an error: the
// caller decides whether the step renders without a spotlight or parks.
func (r *Resolver) Resolve(ctx context.Context, name string) (ports.Element, bool) {
	if el, ok := r.lookup(name); ok {
		return el, true
	}

	changed := make(chan struct{}, 1)
	unsubscribe := r.registry.OnChange(func(n string) {
		if n != name {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	// Re-check after subscribing so a registration racing the subscribe
	// is not missed.
	if el, ok := r.lookup(name); ok {
		return el, true
	}

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-changed:
		case <-ticker.C:
		}
		if el, ok := r.lookup(name); ok {
			return el, true
		}
	}
}

// lookup returns the element only when it is mounted and laid out.
func (r *Resolver) lookup(name string) (ports.Element, bool) {
	el := r.registry.Get(name)
	if el == nil || el.Bounds().Empty() {
		return nil, false
	}
	return el, true
}

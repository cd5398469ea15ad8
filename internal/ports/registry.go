package ports

import "github.com/guidepost-io/guidepost/internal/domain/placement"

// Element is a live handle to a mounted UI node. Bounds may be empty
// while the node is mounted but not yet laid out (e.g. inside a modal
// that is still animating open).
type Element interface {
	Bounds() placement.Rect
}

// Registry maps logical element names to live handles. Feature screens
// register on mount and unregister on unmount; the engine only reads.
// Last registration for a name wins.
type Registry interface {
	// Register binds name to el, replacing any previous binding.
	Register(name string, el Element)

	// Unregister removes the binding for name, if any.
	Unregister(name string)

	// Get returns the current binding for name, or nil.
	Get(name string) Element

	// OnChange subscribes to registry mutations. The callback receives
	// the name that changed. The returned function cancels the
	// subscription.
	OnChange(fn func(name string)) (unsubscribe func())
}

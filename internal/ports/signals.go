package ports

// Signals exposes named observable values owned by other subsystems
// ("is a build running", "is the assistant busy"). The engine only
// reads and subscribes; it never writes. A name that no subsystem
// publishes simply never produces a value.
type Signals interface {
	// Get returns the current value of a signal, if it is defined.
	Get(name string) (value interface{}, ok bool)

	// Subscribe registers fn for future values of the signal. The
	// returned function cancels the subscription.
	Subscribe(name string, fn func(value interface{})) (unsubscribe func())
}

package ports

// Settings persists whether the user has already been through the tour,
// so it does not re-trigger on every launch.
type Settings interface {
	// Completed reports whether a previous session finished the tour.
	Completed() bool

	// Skipped reports whether a previous session skipped the tour.
	Skipped() bool

	// MarkCompleted records tour completion.
	MarkCompleted() error

	// MarkSkipped records a tour skip.
	MarkSkipped() error

	// Reset clears both flags so the tour can run again.
	Reset() error
}

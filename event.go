package downwatch

import "time"

// Event describes a single detected status transition for a target.
//
// Event is immutable after creation. It is constructed only when a
// target's newly classified status differs from its stored status and the
// stored status is not [StatusInitial]. Events are created and dispatched
// synchronously within one loop iteration; they are not queued or retried.
type Event struct {
	// ID is a unique identifier for this event, usable for correlating
	// log lines and channel deliveries.
	ID string

	// Target is the display name of the target that transitioned.
	Target string

	// URL is the target's status page, included in alerts as a reference
	// link.
	URL string

	// Previous is the status stored before this observation. Never
	// [StatusInitial]: first observations establish a baseline without
	// producing an event.
	Previous Status

	// New is the freshly classified status.
	New Status

	// At is the time the transition was detected.
	At time.Time

	// Detail carries optional extra context included in alert bodies.
	Detail string
}

// Observation is a single successful classification of a target, delivered
// to observer callbacks registered with [WithObserver]. Observations are
// ephemeral; only the latest status per target is retained by the watcher.
type Observation struct {
	// Target is the display name of the observed target.
	Target string

	// URL is the target's status page.
	URL string

	// Status is the classified status.
	Status Status

	// At is the time the classification completed.
	At time.Time
}

package state

// Transition records a change in a target's stored status between two
// consecutive successful observations.
type Transition struct {
	// URL identifies the target that transitioned.
	URL string

	// Previous is the status stored before the observation. Never
	// [Initial].
	Previous string

	// New is the freshly observed status.
	New string
}

// Detector compares new observations against a [Store] and decides whether
// a notification-worthy transition occurred.
//
// Detector keeps no state of its own; all state lives in the store, which
// keeps the detection rules unit-testable without the monitoring loop.
type Detector struct {
	store Store
}

// NewDetector creates a [Detector] backed by the given store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// Observe records a new status for a URL and reports whether it
// constitutes a transition.
//
// The store is updated unconditionally, so it always reflects the latest
// observation even when no transition fires. The rules:
//
//  1. Stored status is [Initial]: the observation establishes the baseline;
//     no transition.
//  2. New status equals stored status: steady state; no transition.
//  3. Otherwise: a transition carrying (previous, new) is returned.
//
// A status must change away from its stored value to fire; repeated
// identical observations never fire twice. There is no debounce window:
// oscillation between two statuses fires on every change.
func (d *Detector) Observe(url, newStatus string) (Transition, bool) {
	previous := d.store.Get(url)
	d.store.Set(url, newStatus)

	if previous == Initial || previous == newStatus {
		return Transition{}, false
	}

	return Transition{
		URL:      url,
		Previous: previous,
		New:      newStatus,
	}, true
}

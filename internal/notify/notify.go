// Package notify delivers status transition alerts through notification
// channels (email, Slack, Telegram, generic webhook).
//
// Each channel implements [Notifier] and owns its own failure domain: the
// [Dispatcher] invokes every channel independently, so one channel's
// failure never blocks or cancels another's attempt. Delivery is
// best-effort; failures are logged, not retried.
package notify

import (
	"context"
	"time"
)

// Event is the notification payload for a single status transition.
type Event struct {
	// ID uniquely identifies the event across channels and log lines.
	ID string

	// Target is the display name of the monitored service.
	Target string

	// URL is the status page, included in alerts as a reference link.
	URL string

	// Previous is the status observed before the transition.
	Previous string

	// New is the freshly observed status.
	New string

	// At is the time the transition was detected.
	At time.Time

	// Detail carries optional extra context for alert bodies.
	Detail string
}

// Notifier is the interface that all notification channel implementations
// must satisfy.
type Notifier interface {
	// Name returns the channel identifier (e.g. "email", "slack").
	Name() string

	// Send delivers an alert event. It returns an error if delivery fails.
	Send(ctx context.Context, event Event) error

	// Validate checks whether the channel configuration is usable.
	Validate() error
}

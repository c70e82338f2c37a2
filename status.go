package downwatch

// Status represents the normalized operational state of a monitored target.
//
// Status is a string type that can hold one of a fixed set of values. The
// set of possible values depends on the target's classification mode:
// aggregated-report pages produce [StatusOperational], [StatusPossibleIssues],
// [StatusOutageDetected], or [StatusUnknown]; keyword pages produce
// [StatusOperational] or [StatusPotentialOutage]. Using a string type allows
// for easy JSON serialization and human-readable logging while maintaining
// type safety through the defined constants.
type Status string

const (
	// StatusOperational indicates the service shows no sign of problems.
	StatusOperational Status = "operational"

	// StatusPossibleIssues indicates the page reports minor or unconfirmed
	// issues. Produced only by [ModeAggregated] targets.
	StatusPossibleIssues Status = "possible_issues"

	// StatusOutageDetected indicates the page reports a confirmed outage.
	// Produced only by [ModeAggregated] targets.
	StatusOutageDetected Status = "outage_detected"

	// StatusPotentialOutage indicates none of the target's positive
	// keywords were found. Produced only by [ModeKeyword] targets.
	StatusPotentialOutage Status = "potential_outage"

	// StatusUnknown indicates the page content could not be interpreted.
	// The page may have been blocked or its layout may have changed.
	StatusUnknown Status = "unknown"

	// StatusInitial is the sentinel for a target that has never been
	// observed. It is distinct from every classifier output; a target's
	// first classification replaces it without firing a notification.
	StatusInitial Status = "initial"
)

// String returns the string representation of the status.
// This implements the fmt.Stringer interface.
func (s Status) String() string {
	return string(s)
}

// Mode identifies the classification strategy applied to a target's page
// content. The set of modes is closed; configuration input naming an
// unrecognized mode surfaces [ErrUnknownMode].
type Mode string

const (
	// ModeAggregated classifies DownDetector-style aggregated report pages
	// by indicator phrases checked in a fixed priority order.
	ModeAggregated Mode = "aggregated"

	// ModeKeyword classifies generic status pages by case-insensitive
	// containment of caller-supplied positive keywords.
	ModeKeyword Mode = "keyword"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

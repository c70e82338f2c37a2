package downwatch

import (
	"errors"
	"strings"
)

// ErrUnknownMode is returned when a target names a classification mode
// outside the closed set of [ModeAggregated] and [ModeKeyword].
var ErrUnknownMode = errors.New("unknown classification mode")

// ErrNoKeywords is returned when a [ModeKeyword] target is constructed
// with an empty keyword list. An empty list would classify every page as
// a potential outage, which is a configuration mistake rather than a
// meaningful monitoring setup, so it is surfaced to the caller instead of
// silently accepted.
var ErrNoKeywords = errors.New("keyword mode requires at least one keyword")

// Classifier is a function that maps page content to a [Status].
//
// Classifier follows functional programming principles: it is a pure
// function where the same input always produces the same output, with no
// I/O and no mutable state. This makes classifiers easy to test in
// isolation without standing up the monitoring loop.
//
// The content argument must be pre-normalized (lower-cased) by the caller.
// Keeping case folding out of the classifier keeps matching deterministic
// and free of locale concerns.
//
// # Panic Safety
//
// Classifiers are called within a panic recovery boundary. If a classifier
// panics, the target is skipped for that cycle and an error containing a
// correlation ID is logged. A misbehaving classifier cannot crash the
// monitoring loop.
type Classifier func(content string) (Status, error)

// Aggregated-report indicator phrases, checked in priority order. The
// phrases overlap as substrings ("possible problems" contains "problems"),
// so the first phrase to match by priority wins, regardless of where each
// phrase appears in the text.
const (
	phraseNoProblems       = "indicate no current problems"
	phrasePossibleProblems = "possible problems"
	phraseProblems         = "indicate problems"
)

// AggregatedClassifier returns a [Classifier] for DownDetector-style
// aggregated report pages.
//
// The page content is inspected for indicator phrases in a fixed priority
// order:
//
//  1. "indicate no current problems" → [StatusOperational]
//  2. "possible problems" → [StatusPossibleIssues]
//  3. "indicate problems" → [StatusOutageDetected]
//
// If none of the phrases match, the page cannot be interpreted and the
// result is [StatusUnknown]. Priority order decides, not position in the
// text: content containing both the "no problems" and "problems" phrases
// classifies as [StatusOperational].
func AggregatedClassifier() Classifier {
	return func(content string) (Status, error) {
		switch {
		case strings.Contains(content, phraseNoProblems):
			return StatusOperational, nil
		case strings.Contains(content, phrasePossibleProblems):
			return StatusPossibleIssues, nil
		case strings.Contains(content, phraseProblems):
			return StatusOutageDetected, nil
		default:
			return StatusUnknown, nil
		}
	}
}

// KeywordClassifier returns a [Classifier] for generic status pages that
// advertise health with positive indicator phrases (e.g. "All Systems
// Operational").
//
// The content is checked for containment of each keyword; any match yields
// [StatusOperational], no match yields [StatusPotentialOutage]. Matching is
// case-insensitive: keywords are lower-cased here and the content contract
// requires pre-lowered text.
//
// Returns [ErrNoKeywords] if the keyword list is empty. Surfacing the empty
// list as a construction error prevents a misconfigured target from
// silently reporting a permanent outage.
func KeywordClassifier(keywords []string) (Classifier, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	return func(content string) (Status, error) {
		for _, kw := range lowered {
			if strings.Contains(content, kw) {
				return StatusOperational, nil
			}
		}
		return StatusPotentialOutage, nil
	}, nil
}

// classifierForMode builds the classifier for a target's mode and
// parameters. Returns [ErrUnknownMode] for modes outside the closed set.
func classifierForMode(mode Mode, keywords []string) (Classifier, error) {
	switch mode {
	case ModeAggregated:
		return AggregatedClassifier(), nil
	case ModeKeyword:
		return KeywordClassifier(keywords)
	default:
		return nil, ErrUnknownMode
	}
}

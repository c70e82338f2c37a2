package downwatch

import (
	"errors"
	"fmt"
	"net/url"
)

// Target represents a single monitored status page.
//
// Target is immutable after creation via [NewTarget]. Its URL is the
// stable key used for state tracking; within a [Watcher] every target's
// URL must be unique. Targets are defined at startup and never added or
// removed at runtime.
type Target struct {
	name       string
	url        string
	mode       Mode
	keywords   []string
	classifier Classifier
}

// Name returns the target's human-readable display name.
func (t Target) Name() string {
	return t.name
}

// URL returns the status page URL. The URL is the key under which the
// target's last observed status is tracked.
func (t Target) URL() string {
	return t.url
}

// Mode returns the target's classification mode.
func (t Target) Mode() Mode {
	return t.mode
}

// Keywords returns a copy of the positive-indicator keywords for a
// [ModeKeyword] target. Returns nil for other modes.
func (t Target) Keywords() []string {
	if t.keywords == nil {
		return nil
	}
	return append([]string(nil), t.keywords...)
}

// Classify maps pre-normalized (lower-cased) page content to a [Status]
// using the target's classification mode.
func (t Target) Classify(content string) (Status, error) {
	if t.classifier == nil {
		return StatusUnknown, fmt.Errorf("target %q: %w", t.name, ErrUnknownMode)
	}
	return t.classifier(content)
}

// NewTarget creates a [Target] with the given name, URL, mode, and options.
//
// The name is a human-readable identifier used in logs and alerts. The
// rawURL must be a valid URL with an http:// or https:// scheme. The mode
// selects the classification strategy; [ModeKeyword] targets must supply
// keywords via [WithKeywords].
//
// Returns an error if the name is empty, the URL is invalid, the mode is
// unknown, or a keyword-mode target has no keywords.
//
// Example:
//
//	t, err := downwatch.NewTarget("Internet Archive",
//	    "https://downdetector.com/status/internetarchive/",
//	    downwatch.ModeAggregated,
//	)
func NewTarget(name, rawURL string, mode Mode, opts ...TargetOption) (Target, error) {
	if name == "" {
		return Target{}, errors.New("target name cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Target{}, fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	cfg := &targetConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Target{}, err
		}
	}

	classifier, err := classifierForMode(mode, cfg.keywords)
	if err != nil {
		return Target{}, fmt.Errorf("target %q: %w", name, err)
	}

	return Target{
		name:       name,
		url:        rawURL,
		mode:       mode,
		keywords:   cfg.keywords,
		classifier: classifier,
	}, nil
}

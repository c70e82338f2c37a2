package downwatch

// targetConfig holds mutable state during [Target] construction.
type targetConfig struct {
	keywords []string
}

// TargetOption is a function that configures a [Target] during
// construction via [NewTarget], following the functional options pattern.
type TargetOption func(*targetConfig) error

// WithKeywords sets the positive-indicator keywords for a [ModeKeyword]
// target. Any of the keywords appearing in the page content (matched
// case-insensitively) classifies the target as [StatusOperational].
//
// Can be called multiple times; keywords accumulate. Keyword-mode targets
// constructed without any keywords fail with [ErrNoKeywords].
//
// Example:
//
//	t, err := downwatch.NewTarget("OpenAI API", "https://status.openai.com/",
//	    downwatch.ModeKeyword,
//	    downwatch.WithKeywords("all systems operational", "operational"),
//	)
func WithKeywords(keywords ...string) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.keywords = append(cfg.keywords, keywords...)
		return nil
	}
}

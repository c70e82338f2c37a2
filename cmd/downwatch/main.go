// Package main is the entry point for the downwatch CLI.
//
// Downwatch can be run either as a library (SDK) or as a standalone
// binary with YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	downwatch watch -c config.yaml    # Start monitoring
//	downwatch validate -c config.yaml # Validate configuration
//	downwatch version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "downwatch",
	Short: "A status page monitor that alerts on state transitions",
	Long: `Downwatch monitors external status pages and sends alerts when a
service's operational state changes.

It polls DownDetector-style report pages and generic status pages on a
configurable cadence, classifies each into a discrete status, and fires a
notification through every configured channel (email, Slack, Telegram,
webhook) exactly once per genuine transition.

Quick start:
  1. Create a config file (downwatch.yaml)
  2. Run: downwatch watch -c downwatch.yaml

Example config:
  check_delay: 10s
  loop_delay: 60s
  targets:
    - name: OpenAI API
      url: https://status.openai.com/
      mode: keyword
      keywords: [all systems operational, operational]
  channels:
    slack:
      webhook_url: ${SLACK_WEBHOOK_URL}`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this downwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("downwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"

	"github.com/jpalmerr/downwatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the monitor.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a downwatch configuration file without starting the monitor.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  downwatch validate -c config.yaml
  downwatch validate --config /etc/downwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Fetcher:     %s\n", cfg.Fetcher)
	fmt.Printf("  Check delay: %s\n", cfg.CheckDelay.Duration())
	fmt.Printf("  Loop delay:  %s\n", cfg.LoopDelay.Duration())
	fmt.Printf("  Targets:     %d\n", len(cfg.Targets))
	fmt.Printf("  Channels:    %d enabled\n", cfg.ChannelCount())

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/downwatch"
	"github.com/jpalmerr/downwatch/config"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 15 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// watchCmd starts the monitoring loop.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start monitoring the configured status pages",
	Long: `Start the downwatch monitoring loop.

The loop will:
  - Load configuration from the specified YAML file
  - Poll every configured target on the configured cadence
  - Send alerts through the configured channels on status transitions

The loop runs until interrupted (Ctrl+C) or receives SIGTERM. Shutdown is
graceful: the in-flight check finishes and the page fetcher is released.

Example:
  downwatch watch -c config.yaml
  downwatch watch --config /etc/downwatch/config.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"targets", len(cfg.Targets),
		"channels", cfg.ChannelCount(),
		"fetcher", cfg.Fetcher,
		"check_delay", cfg.CheckDelay.Duration().String(),
		"loop_delay", cfg.LoopDelay.Duration().String(),
	)

	// convert config to SDK targets and options
	targets, err := config.BuildTargets(cfg)
	if err != nil {
		return fmt.Errorf("failed to build targets: %w", err)
	}

	opts := append(config.BuildOptions(cfg),
		downwatch.WithTargets(targets...),
		downwatch.WithLogger(logger),
	)

	w, err := downwatch.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the loop - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Run(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("watcher error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}

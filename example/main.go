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
)

func main() {
	archive, err := downwatch.NewTarget("Internet Archive",
		"https://downdetector.com/status/internetarchive/",
		downwatch.ModeAggregated,
	)
	if err != nil {
		slog.Error("failed to create target", "error", err)
		os.Exit(1)
	}

	openai, err := downwatch.NewTarget("OpenAI API", "https://status.openai.com/",
		downwatch.ModeKeyword,
		downwatch.WithKeywords("all systems operational", "operational"),
	)
	if err != nil {
		slog.Error("failed to create target", "error", err)
		os.Exit(1)
	}

	opts := []downwatch.Option{
		downwatch.WithTargets(archive, openai),
		downwatch.WithCheckDelay(10 * time.Second),
		downwatch.WithLoopDelay(60 * time.Second),
		// print every observation; real deployments would configure
		// WithEmail / WithSlackWebhook / WithTelegram instead
		downwatch.WithObserver(func(obs downwatch.Observation) {
			fmt.Printf("%s: %s [%s]\n", obs.At.Format(time.TimeOnly), obs.Target, obs.Status)
		}),
		downwatch.WithAlertFunc("console", func(_ context.Context, ev downwatch.Event) error {
			fmt.Printf(">>> %s changed: %s -> %s (%s)\n", ev.Target, ev.Previous, ev.New, ev.URL)
			return nil
		}),
	}

	w, err := downwatch.New(opts...)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("watching 2 targets, Ctrl+C to stop")
	if err := w.Run(ctx); err != nil {
		slog.Error("watcher failed", "error", err)
		os.Exit(1)
	}
}

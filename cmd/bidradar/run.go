// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bidradar/internal/notify"
	"github.com/pdiddy/bidradar/internal/pipeline"
	"github.com/pdiddy/bidradar/internal/source"
	"github.com/pdiddy/bidradar/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one collection and triage run",
	Long: `Run fetches listings from every enabled source under the wall-clock
budget, normalizes and deduplicates them, scores and classifies the
survivors, notifies the configured webhook, and stores fresh listings.
A failed source contributes nothing; the run continues.

After the run, entries older than the retention window are purged.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Duration("budget", 0, "wall-clock budget for collection (default 4m)")
	runCmd.Flags().Int("max-entries", 0, "cap on raw listings processed per run (default 500)")
	runCmd.Flags().String("db", "", "SQLite database path (default data/bids.db)")
	runCmd.Flags().Bool("no-notify", false, "skip webhook delivery for this run")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if v, _ := cmd.Flags().GetDuration("budget"); v > 0 {
		cfg.Collect.Budget = v
	}
	if v, _ := cmd.Flags().GetInt("max-entries"); v > 0 {
		cfg.Collect.MaxEntries = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}
	noNotify, _ := cmd.Flags().GetBool("no-notify")

	db, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	client := &http.Client{Timeout: cfg.Collect.Timeout}
	var adapters []source.Adapter
	if cfg.Collect.EnableKKJ {
		adapters = append(adapters, source.NewKKJAdapter(client, cfg.Scoring.Keywords, cfg.Collect))
	}
	if cfg.Collect.EnableFeeds {
		adapters = append(adapters, source.NewFeedAdapter(client, cfg.Collect.Feeds, cfg.Scoring.Keywords, cfg.Collect))
	}

	var notifier pipeline.Notifier = notify.Noop{}
	if cfg.Notify.WebhookURL != "" && !noNotify {
		notifier = notify.NewTeamsNotifier(cfg.Notify)
	} else {
		fmt.Fprintln(os.Stderr, "no webhook configured: notifications disabled")
	}

	ctx := context.Background()
	runner := pipeline.NewRunner(adapters, db, notifier, cfg)
	report, err := runner.Run(ctx, os.Stdout)
	pipeline.FormatReport(report, os.Stdout)
	if err != nil {
		if pipeline.IsAbort(err) {
			return fmt.Errorf("run aborted before collection: %w", err)
		}
		return err
	}

	if _, isNoop := notifier.(notify.Noop); !isNoop {
		ok := len(report.NotifyErrors) == 0
		errMsg := ""
		if !ok {
			errMsg = report.NotifyErrors[0]
		}
		if recErr := db.RecordNotification(ctx, "teams", report.Processed, ok, errMsg); recErr != nil {
			fmt.Fprintf(os.Stderr, "warning: recording notification history: %v\n", recErr)
		}
	}

	purged, err := db.PurgeOlderThan(ctx, cfg.Retention.Days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: purge failed: %v\n", err)
	} else if purged > 0 {
		fmt.Printf("purged %d entries older than %d days\n", purged, cfg.Retention.Days)
	}

	return nil
}

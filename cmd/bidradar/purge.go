// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bidradar/internal/store"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored listings older than the retention window",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().Int("days", 0, "retention window in days (default from config, 30)")
	purgeCmd.Flags().String("db", "", "SQLite database path (default data/bids.db)")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}
	days := cfg.Retention.Days
	if v, _ := cmd.Flags().GetInt("days"); v > 0 {
		days = v
	}

	db, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	purged, err := db.PurgeOlderThan(context.Background(), days)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d entries older than %d days\n", purged, days)
	return nil
}

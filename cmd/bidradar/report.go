// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bidradar/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query stored listings and data-set statistics",
	Long: `Report reads the listings database: the top listings by relevance
score, or aggregate statistics with --stats. Output is a table by default
or JSON with --json.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Int("min-score", 0, "minimum relevance score")
	reportCmd.Flags().Int("limit", 20, "maximum number of listings")
	reportCmd.Flags().String("db", "", "SQLite database path (default data/bids.db)")
	reportCmd.Flags().Bool("stats", false, "print data-set statistics instead of listings")
	reportCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}

	db, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		stats, err := db.Stats(ctx, cfg.Classify)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}
		fmt.Printf("entries: %d (high=%d medium=%d)\n", stats.Total, stats.HighCount, stats.MediumCount)
		for src, n := range stats.BySourceType {
			fmt.Printf("  %s: %d\n", src, n)
		}
		return nil
	}

	minScore, _ := cmd.Flags().GetInt("min-score")
	limit, _ := cmd.Flags().GetInt("limit")
	listings, err := db.TopByScore(ctx, minScore, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	if len(listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	fmt.Printf("%-5s  %-50s  %-24s  %-5s  %s\n", "ID", "Title", "Organization", "Score", "Source")
	fmt.Println(strings.Repeat("-", 100))
	for _, l := range listings {
		fmt.Printf("%-5d  %-50s  %-24s  %-5d  %s\n",
			l.ID, truncate(l.Title, 50), truncate(l.Organization, 24), l.RelevanceScore, l.SourceType)
	}
	fmt.Printf("\n%d listings\n", len(listings))
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

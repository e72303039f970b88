// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/bidradar/internal/source"
	"github.com/pdiddy/bidradar/pkg/types"
)

// pipelineConfig merges the deployment defaults with whatever the viper
// config file and BIDRADAR_* environment supply. Lists replace the
// defaults wholesale when set; scalars override individually.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetDuration("collect.timeout"); v > 0 {
		cfg.Collect.Timeout = v
	}
	if v := viper.GetString("collect.user_agent"); v != "" {
		cfg.Collect.UserAgent = v
	}
	if v := viper.GetDuration("collect.budget"); v > 0 {
		cfg.Collect.Budget = v
	}
	if v := viper.GetInt("collect.max_concurrent_sources"); v > 0 {
		cfg.Collect.MaxConcurrentSources = v
	}
	if v := viper.GetInt("collect.max_entries"); v > 0 {
		cfg.Collect.MaxEntries = v
	}
	if v := viper.GetDuration("collect.source_delay"); v > 0 {
		cfg.Collect.SourceDelay = v
	}
	if v := viper.GetInt("collect.retry_count"); v > 0 {
		cfg.Collect.RetryCount = v
	}
	if v := viper.GetDuration("collect.retry_delay"); v > 0 {
		cfg.Collect.RetryDelay = v
	}
	if viper.IsSet("collect.enable_kkj") {
		cfg.Collect.EnableKKJ = viper.GetBool("collect.enable_kkj")
	}
	if viper.IsSet("collect.enable_feeds") {
		cfg.Collect.EnableFeeds = viper.GetBool("collect.enable_feeds")
	}
	if viper.IsSet("collect.feeds") {
		var feeds []types.FeedSource
		if err := viper.UnmarshalKey("collect.feeds", &feeds); err == nil {
			cfg.Collect.Feeds = feeds
		}
	}
	if path := viper.GetString("collect.feeds_file"); path != "" {
		cat, err := source.ReadCatalogFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring feed catalog: %v\n", err)
		} else {
			cfg.Collect.Feeds = cat.Feeds
			if len(cat.Translations) > 0 {
				cfg.Collect.QueryTranslations = cat.Translations
			}
		}
	}

	if v := viper.GetStringSlice("scoring.keywords"); len(v) > 0 {
		cfg.Scoring.Keywords = v
	}
	if viper.IsSet("scoring.exclude_keywords") {
		cfg.Scoring.ExcludeKeywords = viper.GetStringSlice("scoring.exclude_keywords")
	}
	if v := viper.GetStringSlice("scoring.near_regions"); len(v) > 0 {
		cfg.Scoring.NearRegions = v
	}
	if v := viper.GetStringSlice("scoring.secondary_regions"); len(v) > 0 {
		cfg.Scoring.SecondaryRegions = v
	}
	if v := viper.GetStringSlice("scoring.municipal_markers"); len(v) > 0 {
		cfg.Scoring.MunicipalMarkers = v
	}

	if v := viper.GetFloat64("dedup.similarity_threshold"); v > 0 {
		cfg.Dedup.SimilarityThreshold = v
	}
	if v := viper.GetInt("classify.high_threshold"); v > 0 {
		cfg.Classify.HighThreshold = v
	}
	if v := viper.GetInt("classify.medium_threshold"); v > 0 {
		cfg.Classify.MediumThreshold = v
	}
	if viper.IsSet("routing.min_score") {
		cfg.Routing.MinScore = viper.GetInt("routing.min_score")
	}
	if v := viper.GetInt("retention.days"); v > 0 {
		cfg.Retention.Days = v
	}
	if v := viper.GetString("storage.path"); v != "" {
		cfg.Storage.Path = v
	}

	cfg.Notify.WebhookURL = secretDefault("teams-webhook-url", viper.GetString("notify.webhook_url"))
	if v := viper.GetDuration("notify.timeout"); v > 0 {
		cfg.Notify.Timeout = v
	}
	if v := viper.GetInt("notify.max_listed"); v > 0 {
		cfg.Notify.MaxListed = v
	}

	return cfg
}

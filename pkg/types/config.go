// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by adapters that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bidradar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectConfig holds settings for the collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// Budget is the wall-clock budget for one collection pass. Once it is
	// exhausted no further adapter is started; adapters already in flight
	// drain normally.
	Budget time.Duration `json:"budget" yaml:"budget"`

	// MaxConcurrentSources bounds the adapter worker pool (default 4).
	MaxConcurrentSources int `json:"max_concurrent_sources" yaml:"max_concurrent_sources"`

	// MaxEntries caps the number of raw listings handed to processing,
	// keeping the first-collected entries (default 500).
	MaxEntries int `json:"max_entries" yaml:"max_entries"`

	// SourceDelay is the fixed pause between consecutive requests to the
	// same source (default 1s).
	SourceDelay time.Duration `json:"source_delay" yaml:"source_delay"`

	// RetryCount and RetryDelay bound the per-request retry loop inside
	// adapters: at most RetryCount attempts with a fixed RetryDelay
	// between them.
	RetryCount int           `json:"retry_count" yaml:"retry_count"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// EnableKKJ controls the government procurement portal adapter.
	EnableKKJ bool `json:"enable_kkj" yaml:"enable_kkj"`

	// EnableFeeds controls the municipal/agency feed adapter.
	EnableFeeds bool `json:"enable_feeds" yaml:"enable_feeds"`

	// Feeds is the feed catalog for the feed adapter. Empty means the
	// built-in catalog.
	Feeds []FeedSource `json:"feeds,omitempty" yaml:"feeds,omitempty"`

	// QueryTranslations overrides the portal query terms per keyword.
	// Empty means the built-in table.
	QueryTranslations map[string]string `json:"query_translations,omitempty" yaml:"query_translations,omitempty"`
}

// FeedSource identifies one municipal or agency feed.
type FeedSource struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`

	// Kind tags the publisher level: "agency", "ministry", or "prefecture".
	Kind string `json:"kind" yaml:"kind"`
}

// ScoringConfig holds the keyword and region tables the scorer consults.
// All of these are deployment data, not code: the defaults mirror the
// services the pipeline was built to find.
type ScoringConfig struct {
	// Keywords are the target service keywords. A match in a title is
	// worth more than a match in a description.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// ExcludeKeywords drop a listing outright when found in its title or
	// description.
	ExcludeKeywords []string `json:"exclude_keywords" yaml:"exclude_keywords"`

	// NearRegions and SecondaryRegions are substring sets matched against
	// the listing region (e.g. capital-region prefectures).
	NearRegions      []string `json:"near_regions" yaml:"near_regions"`
	SecondaryRegions []string `json:"secondary_regions" yaml:"secondary_regions"`

	// MunicipalMarkers mark municipal-level organizations (city, ward,
	// town, village suffixes).
	MunicipalMarkers []string `json:"municipal_markers" yaml:"municipal_markers"`
}

// ClassifyConfig holds the tier thresholds. Bounds are inclusive: a score
// equal to HighThreshold classifies as high.
type ClassifyConfig struct {
	HighThreshold   int `json:"high_threshold" yaml:"high_threshold"`
	MediumThreshold int `json:"medium_threshold" yaml:"medium_threshold"`
}

// DedupConfig holds settings for in-run deduplication.
type DedupConfig struct {
	// SimilarityThreshold is the Jaccard similarity above which two titles
	// are considered duplicates (default 0.8).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
}

// RoutingConfig holds settings for the routing stage.
type RoutingConfig struct {
	// MinScore is the relevance floor: listings scoring below it are not
	// stored or notified.
	MinScore int `json:"min_score" yaml:"min_score"`
}

// RetentionConfig holds settings for the retention filter and purge.
type RetentionConfig struct {
	// Days is the retention window. Listings published more than Days ago
	// are dropped; listings with no parseable published date are kept.
	Days int `json:"days" yaml:"days"`
}

// StorageConfig holds settings for the SQLite store.
type StorageConfig struct {
	// Path is the SQLite database file (default "data/bids.db").
	Path string `json:"path" yaml:"path"`
}

// NotifyConfig holds settings for the notification collaborator.
type NotifyConfig struct {
	// WebhookURL is the Teams incoming-webhook endpoint. Empty disables
	// notifications.
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`

	// Timeout is the webhook request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxListed caps how many listings one message spells out.
	MaxListed int `json:"max_listed" yaml:"max_listed"`
}

// PipelineConfig groups all stage configurations for one run. It is passed
// by value into the orchestrator and each component; there is no global
// configuration state.
type PipelineConfig struct {
	Collect   CollectConfig   `json:"collect" yaml:"collect"`
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring"`
	Dedup     DedupConfig     `json:"dedup" yaml:"dedup"`
	Classify  ClassifyConfig  `json:"classify" yaml:"classify"`
	Routing   RoutingConfig   `json:"routing" yaml:"routing"`
	Retention RetentionConfig `json:"retention" yaml:"retention"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify"`
}

// DefaultPipelineConfig returns the deployment defaults. Keyword and region
// tables target back-office service procurements in the Kanto area.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Collect: CollectConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "bidradar/0.1",
			},
			Budget:               4 * time.Minute,
			MaxConcurrentSources: 4,
			MaxEntries:           500,
			SourceDelay:          1 * time.Second,
			RetryCount:           3,
			RetryDelay:           2 * time.Second,
			EnableKKJ:            true,
			EnableFeeds:          true,
		},
		Scoring: ScoringConfig{
			Keywords: []string{
				"データ入力",
				"入力作業",
				"キッティング",
				"PC設定",
				"コールセンター",
				"電話受付",
				"事務業務",
				"システム構築",
			},
			ExcludeKeywords: []string{
				"建設工事",
				"土木",
				"解体",
				"清掃",
				"警備",
			},
			NearRegions:      []string{"東京", "神奈川", "千葉", "埼玉"},
			SecondaryRegions: []string{"大阪", "京都", "兵庫"},
			MunicipalMarkers: []string{"市", "区", "町", "村"},
		},
		Dedup: DedupConfig{
			SimilarityThreshold: 0.8,
		},
		Classify: ClassifyConfig{
			HighThreshold:   80,
			MediumThreshold: 60,
		},
		Routing: RoutingConfig{
			MinScore: 30,
		},
		Retention: RetentionConfig{
			Days: 30,
		},
		Storage: StorageConfig{
			Path: "data/bids.db",
		},
		Notify: NotifyConfig{
			Timeout:   10 * time.Second,
			MaxListed: 5,
		},
	}
}

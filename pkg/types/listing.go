// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bidradar pipeline:
// raw and canonical procurement listings, priority tiers, run reports, and
// the per-stage configuration structs.
package types

import "time"

// Field length limits for canonical Listing fields. Normalization truncates
// to these limits; it never rejects on length.
const (
	MaxTitleLen        = 500
	MaxDescriptionLen  = 2000
	MaxOrganizationLen = 200
	MaxRegionLen       = 100
	MaxSourceURLLen    = 500
	MaxSourceTypeLen   = 50
)

// RegionNationwide is the sentinel region used when a source does not
// report one.
const RegionNationwide = "全国"

// RawListing is a best-effort field set extracted by a source adapter.
// Every field is free text as found in the source; the normalizer owns
// parsing, trimming, and validation. A raw listing carries no invariants.
type RawListing struct {
	Title        string
	Description  string
	Organization string
	Region       string

	// Budget is the budget text as published (e.g. "5,000,000円").
	// The normalizer extracts digits; anything unparseable becomes absent.
	Budget string

	// Published and Deadline are date strings in whatever layout the
	// source uses.
	Published string
	Deadline  string

	SourceURL  string
	SourceType string
}

// Listing is one normalized procurement opportunity. Instances are value
// records: after normalization the pipeline attaches a score and matched
// keywords but never rewrites the source fields.
type Listing struct {
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	Organization string `json:"organization" yaml:"organization"`
	Region       string `json:"region" yaml:"region"`

	// BudgetAmount is the budget in whole currency units; nil when the
	// source did not publish one or it could not be parsed.
	BudgetAmount *int64 `json:"budget_amount,omitempty" yaml:"budget_amount,omitempty"`

	// PublishedDate and DeadlineDate are zero when absent or unparseable.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`
	DeadlineDate  time.Time `json:"deadline_date,omitzero" yaml:"deadline_date,omitempty"`

	SourceURL  string `json:"source_url" yaml:"source_url"`
	SourceType string `json:"source_type" yaml:"source_type"`

	// RelevanceScore is set by the scorer, always within [0, 100].
	RelevanceScore int `json:"relevance_score" yaml:"relevance_score"`

	// KeywordsMatched lists matched target keywords in first-match order.
	KeywordsMatched []string `json:"keywords_matched,omitempty" yaml:"keywords_matched,omitempty"`

	// Processed and Notified are owned by downstream collaborators once
	// the listing is stored; the pipeline never sets them.
	Processed bool `json:"processed" yaml:"processed"`
	Notified  bool `json:"notified" yaml:"notified"`
}

// Tier is the priority bucket derived from a relevance score.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Classified pairs a scored listing with its tier label. The classifier
// produces these; the orchestrator routes on them.
type Classified struct {
	Listing Listing `json:"listing" yaml:"listing"`
	Tier    Tier    `json:"tier" yaml:"tier"`
}

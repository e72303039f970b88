// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"time"

	"github.com/pdiddy/bidradar/pkg/types"
)

// RetentionFilter drops listings published before the retention cutoff.
// Listings with no parseable published date are always kept: silently
// losing a live opportunity costs more than carrying a stale one.
type RetentionFilter struct {
	days int
	now  func() time.Time
}

// NewRetentionFilter returns a filter with the configured window (30 days
// when unset).
func NewRetentionFilter(cfg types.RetentionConfig) *RetentionFilter {
	days := cfg.Days
	if days <= 0 {
		days = 30
	}
	return &RetentionFilter{days: days, now: time.Now}
}

// WithClock replaces the filter's clock and returns the filter.
func (f *RetentionFilter) WithClock(now func() time.Time) *RetentionFilter {
	f.now = now
	return f
}

// Keep reports whether the listing is within the retention window.
func (f *RetentionFilter) Keep(l types.Listing) bool {
	if l.PublishedDate.IsZero() {
		return true
	}
	now := f.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -f.days)
	published := l.PublishedDate
	published = time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, time.UTC)
	return !published.Before(cutoff)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline implements the relevance pipeline: normalization,
// deduplication, scoring, classification, retention filtering, and the run
// orchestrator that sequences them.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/bidradar/pkg/types"
)

// dateLayouts are the published/deadline date formats seen across sources.
// Feed timestamps come in RFC variants; the portal API uses plain dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006年01月02日",
	"2006年1月2日",
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// Normalize maps a best-effort raw field set into a canonical Listing.
// String fields are trimmed and truncated to their limits; missing
// required fields (title, organization, source URL) return an error
// wrapping ErrInvalidListing. Budget and date fields that fail to parse
// are left absent, never defaulted.
func Normalize(raw types.RawListing) (types.Listing, error) {
	l := types.Listing{
		Title:        clamp(raw.Title, types.MaxTitleLen),
		Description:  clamp(raw.Description, types.MaxDescriptionLen),
		Organization: clamp(raw.Organization, types.MaxOrganizationLen),
		Region:       clamp(raw.Region, types.MaxRegionLen),
		SourceURL:    clamp(raw.SourceURL, types.MaxSourceURLLen),
		SourceType:   clamp(raw.SourceType, types.MaxSourceTypeLen),
	}

	switch {
	case l.Title == "":
		return types.Listing{}, fmt.Errorf("%w: missing title", ErrInvalidListing)
	case l.Organization == "":
		return types.Listing{}, fmt.Errorf("%w: missing organization (title %q)", ErrInvalidListing, l.Title)
	case l.SourceURL == "":
		return types.Listing{}, fmt.Errorf("%w: missing source URL (title %q)", ErrInvalidListing, l.Title)
	}

	if l.Region == "" {
		l.Region = types.RegionNationwide
	}

	if amount, ok := parseBudget(raw.Budget); ok {
		l.BudgetAmount = &amount
	}
	l.PublishedDate = parseDate(raw.Published)
	l.DeadlineDate = parseDate(raw.Deadline)

	return l, nil
}

// clamp trims surrounding whitespace and truncates to max runes.
func clamp(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

// parseBudget extracts the digits from a free-text budget (e.g.
// "5,000,000円"). Negative or digit-free text yields no budget.
func parseBudget(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	amount, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// parseDate tries each known layout and returns the zero time when none
// matches.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"time"

	"github.com/pdiddy/bidradar/pkg/types"
)

// Score term weights. All terms are additive; the sum is clamped to 100.
const (
	titleKeywordPoints       = 30
	descriptionKeywordPoints = 10
	budgetLargePoints        = 20 // >= 10,000,000
	budgetMediumPoints       = 15 // >= 5,000,000
	budgetSmallPoints        = 10 // >= 1,000,000
	nearRegionPoints         = 15
	secondaryRegionPoints    = 10
	municipalOrgPoints       = 5
	deadlineFarPoints        = 10 // >= 14 days out
	deadlineNearPoints       = 5  // >= 7 days out

	maxScore = 100
)

// Scorer computes the deterministic relevance score of a listing. The clock
// is injectable so that deadline terms are reproducible in tests.
type Scorer struct {
	cfg types.ScoringConfig
	now func() time.Time
}

// NewScorer returns a Scorer over the given keyword and region tables.
func NewScorer(cfg types.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// WithClock replaces the scorer's clock and returns the scorer.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score returns the listing's relevance score in [0, 100] and the target
// keywords it matched, in first-match order. Each distinct keyword
// contributes once: title matches outweigh description matches, and
// occurrences beyond the first add nothing. Scoring the same listing twice
// yields the same result.
func (s *Scorer) Score(l types.Listing) (int, []string) {
	title := strings.ToLower(l.Title)
	description := strings.ToLower(l.Description)

	score := 0
	var matched []string
	for _, kw := range s.cfg.Keywords {
		folded := strings.ToLower(kw)
		if folded == "" {
			continue
		}
		switch {
		case strings.Contains(title, folded):
			score += titleKeywordPoints
			matched = append(matched, kw)
		case strings.Contains(description, folded):
			score += descriptionKeywordPoints
			matched = append(matched, kw)
		}
	}

	if l.BudgetAmount != nil {
		switch amount := *l.BudgetAmount; {
		case amount >= 10_000_000:
			score += budgetLargePoints
		case amount >= 5_000_000:
			score += budgetMediumPoints
		case amount >= 1_000_000:
			score += budgetSmallPoints
		}
	}

	region := strings.ToLower(l.Region)
	switch {
	case containsAny(region, s.cfg.NearRegions):
		score += nearRegionPoints
	case containsAny(region, s.cfg.SecondaryRegions):
		score += secondaryRegionPoints
	}

	if containsAny(strings.ToLower(l.Organization), s.cfg.MunicipalMarkers) {
		score += municipalOrgPoints
	}

	if !l.DeadlineDate.IsZero() {
		switch days := daysUntil(s.now(), l.DeadlineDate); {
		case days >= 14:
			score += deadlineFarPoints
		case days >= 7:
			score += deadlineNearPoints
		}
	}

	if score > maxScore {
		score = maxScore
	}
	return score, matched
}

// Excluded reports whether the listing's title or description contains an
// exclude keyword, and which one. Matching is case-insensitive.
func (s *Scorer) Excluded(l types.Listing) (string, bool) {
	text := strings.ToLower(l.Title + " " + l.Description)
	for _, kw := range s.cfg.ExcludeKeywords {
		folded := strings.ToLower(kw)
		if folded != "" && strings.Contains(text, folded) {
			return kw, true
		}
	}
	return "", false
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// daysUntil counts whole calendar days from now's date to the deadline's
// date. Past deadlines yield negative counts, which score zero.
func daysUntil(now, deadline time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today) / (24 * time.Hour))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"unicode"

	"github.com/pdiddy/bidradar/pkg/types"
)

// Deduplicator removes listings already seen within the current run. Two
// listings are duplicates when their titles exceed the Jaccard similarity
// threshold, or when both carry the same non-empty source URL.
//
// The accepted set is owned by one run: listings are compared against it
// and appended only after acceptance, so no comparison ever sees a
// partially updated set.
type Deduplicator struct {
	threshold float64
	accepted  []types.Listing
}

// NewDeduplicator returns a Deduplicator with the configured similarity
// threshold (0.8 when unset).
func NewDeduplicator(cfg types.DedupConfig) *Deduplicator {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.8
	}
	return &Deduplicator{threshold: threshold}
}

// Filter returns the listings not duplicating an earlier accepted listing,
// preserving input order, along with the number removed. Comparison is
// pairwise against everything accepted so far in this run.
func (d *Deduplicator) Filter(listings []types.Listing) ([]types.Listing, int) {
	var kept []types.Listing
	removed := 0
	for _, l := range listings {
		if d.seen(l) {
			removed++
			continue
		}
		d.accepted = append(d.accepted, l)
		kept = append(kept, l)
	}
	return kept, removed
}

func (d *Deduplicator) seen(l types.Listing) bool {
	for _, a := range d.accepted {
		if TitleSimilarity(l.Title, a.Title) > d.threshold {
			return true
		}
		if l.SourceURL != "" && l.SourceURL == a.SourceURL {
			return true
		}
	}
	return false
}

// TitleSimilarity computes the Jaccard similarity of the two titles' token
// sets. Tokens are case-folded maximal runs of letters and digits, so
// punctuation variants (full-width vs ASCII parentheses) do not matter.
// An empty title is similar to nothing, including another empty title.
func TitleSimilarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

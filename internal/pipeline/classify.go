// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/bidradar/pkg/types"

// Classify maps a relevance score to its priority tier. Thresholds are
// inclusive lower bounds: a score exactly at the high threshold is high.
// Unset thresholds fall back to the 80/60 defaults.
func Classify(score int, cfg types.ClassifyConfig) types.Tier {
	high := cfg.HighThreshold
	if high <= 0 {
		high = 80
	}
	medium := cfg.MediumThreshold
	if medium <= 0 {
		medium = 60
	}

	switch {
	case score >= high:
		return types.TierHigh
	case score >= medium:
		return types.TierMedium
	default:
		return types.TierLow
	}
}

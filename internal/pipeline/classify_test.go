// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"testing"

	"github.com/pdiddy/bidradar/pkg/types"
)

func TestClassify(t *testing.T) {
	cfg := types.ClassifyConfig{HighThreshold: 80, MediumThreshold: 60}

	tests := []struct {
		score int
		want  types.Tier
	}{
		{100, types.TierHigh},
		{81, types.TierHigh},
		{80, types.TierHigh}, // threshold is an inclusive lower bound
		{79, types.TierMedium},
		{60, types.TierMedium},
		{59, types.TierLow},
		{0, types.TierLow},
	}
	for _, tt := range tests {
		if got := Classify(tt.score, cfg); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyDefaults(t *testing.T) {
	// Unset thresholds fall back to 80/60.
	if got := Classify(80, types.ClassifyConfig{}); got != types.TierHigh {
		t.Errorf("Classify(80) with zero config = %s, want high", got)
	}
	if got := Classify(60, types.ClassifyConfig{}); got != types.TierMedium {
		t.Errorf("Classify(60) with zero config = %s, want medium", got)
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	cfg := types.ClassifyConfig{HighThreshold: 90, MediumThreshold: 50}
	if got := Classify(85, cfg); got != types.TierMedium {
		t.Errorf("Classify(85) = %s, want medium under a 90 threshold", got)
	}
}

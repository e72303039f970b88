// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/bidradar/pkg/types"
)

func validRaw() types.RawListing {
	return types.RawListing{
		Title:        "  コールセンター業務委託  ",
		Description:  "市民からの問い合わせ対応業務。",
		Organization: "○○市",
		Region:       "東京都",
		Budget:       "5,000,000円",
		Published:    "2026-08-20",
		Deadline:     "2026/09/15",
		SourceURL:    "https://example.com/bid/1",
		SourceType:   "government_api",
	}
}

func TestNormalizeValid(t *testing.T) {
	l, err := Normalize(validRaw())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if l.Title != "コールセンター業務委託" {
		t.Errorf("Title = %q, want trimmed", l.Title)
	}
	if l.BudgetAmount == nil || *l.BudgetAmount != 5000000 {
		t.Errorf("BudgetAmount = %v, want 5000000", l.BudgetAmount)
	}
	if want := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC); !l.PublishedDate.Equal(want) {
		t.Errorf("PublishedDate = %v, want %v", l.PublishedDate, want)
	}
	if want := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC); !l.DeadlineDate.Equal(want) {
		t.Errorf("DeadlineDate = %v, want %v", l.DeadlineDate, want)
	}
}

func TestNormalizeMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.RawListing)
	}{
		{"missing title", func(r *types.RawListing) { r.Title = "" }},
		{"whitespace title", func(r *types.RawListing) { r.Title = "   " }},
		{"missing organization", func(r *types.RawListing) { r.Organization = "" }},
		{"missing source URL", func(r *types.RawListing) { r.SourceURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Normalize(raw)
			if !errors.Is(err, ErrInvalidListing) {
				t.Errorf("Normalize() error = %v, want ErrInvalidListing", err)
			}
		})
	}
}

func TestNormalizeTruncatesLongFields(t *testing.T) {
	raw := validRaw()
	raw.Title = strings.Repeat("あ", 600)
	raw.Description = strings.Repeat("x", 3000)

	l, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want truncation not rejection", err)
	}
	if got := len([]rune(l.Title)); got != types.MaxTitleLen {
		t.Errorf("len(Title) = %d, want %d", got, types.MaxTitleLen)
	}
	if got := len([]rune(l.Description)); got != types.MaxDescriptionLen {
		t.Errorf("len(Description) = %d, want %d", got, types.MaxDescriptionLen)
	}
}

func TestNormalizeUnparseableFieldsAbsent(t *testing.T) {
	raw := validRaw()
	raw.Budget = "未定"
	raw.Published = "not a date"
	raw.Deadline = ""

	l, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if l.BudgetAmount != nil {
		t.Errorf("BudgetAmount = %v, want absent", *l.BudgetAmount)
	}
	if !l.PublishedDate.IsZero() {
		t.Errorf("PublishedDate = %v, want zero", l.PublishedDate)
	}
	if !l.DeadlineDate.IsZero() {
		t.Errorf("DeadlineDate = %v, want zero", l.DeadlineDate)
	}
}

func TestNormalizeRegionDefault(t *testing.T) {
	raw := validRaw()
	raw.Region = "  "

	l, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if l.Region != types.RegionNationwide {
		t.Errorf("Region = %q, want %q", l.Region, types.RegionNationwide)
	}
}

func TestNormalizeDateLayouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-08-20", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"2026/08/20", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"2026年8月20日", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{"2026年08月20日", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseDate(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

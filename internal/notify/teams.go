// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers classified listings to a Teams incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/bidradar/pkg/types"
)

// messageCard is the legacy Office 365 connector card the webhook accepts.
type messageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	Summary    string        `json:"summary"`
	ThemeColor string        `json:"themeColor"`
	Title      string        `json:"title"`
	Sections   []cardSection `json:"sections"`
}

type cardSection struct {
	ActivityTitle string     `json:"activityTitle,omitempty"`
	Text          string     `json:"text,omitempty"`
	Facts         []cardFact `json:"facts,omitempty"`
}

type cardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TeamsNotifier posts MessageCards to a Teams incoming webhook.
type TeamsNotifier struct {
	client *http.Client
	cfg    types.NotifyConfig
}

// NewTeamsNotifier returns a notifier for the configured webhook.
func NewTeamsNotifier(cfg types.NotifyConfig) *TeamsNotifier {
	return &TeamsNotifier{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// SendImmediate posts a high-priority alert listing the given entries.
func (n *TeamsNotifier) SendImmediate(ctx context.Context, high []types.Classified) error {
	card := messageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		Summary:    "高優先度案件アラート",
		ThemeColor: "FF4500",
		Title:      fmt.Sprintf("🚨 高優先度案件 %d件", len(high)),
		Sections:   listingSections(high, n.maxListed()),
	}
	return n.post(ctx, card)
}

// SendSummary posts the daily run summary: tier counts and run statistics.
func (n *TeamsNotifier) SendSummary(ctx context.Context, all []types.Classified, report types.RunReport) error {
	card := messageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		Summary:    "入札案件日次レポート",
		ThemeColor: "0078D7",
		Title:      "📋 入札案件日次レポート",
		Sections: []cardSection{
			{
				Facts: []cardFact{
					{Name: "収集件数", Value: fmt.Sprintf("%d", report.Collected)},
					{Name: "処理件数", Value: fmt.Sprintf("%d", report.Processed)},
					{Name: "保存件数", Value: fmt.Sprintf("%d", report.Stored)},
					{Name: "高優先度", Value: fmt.Sprintf("%d", report.TierCounts[types.TierHigh])},
					{Name: "中優先度", Value: fmt.Sprintf("%d", report.TierCounts[types.TierMedium])},
					{Name: "失敗ソース", Value: fmt.Sprintf("%d", len(report.AdapterFailures))},
				},
			},
		},
	}
	if top := topByTier(all, n.maxListed()); len(top) > 0 {
		card.Sections = append(card.Sections, listingSections(top, n.maxListed())...)
	}
	return n.post(ctx, card)
}

func (n *TeamsNotifier) maxListed() int {
	if n.cfg.MaxListed > 0 {
		return n.cfg.MaxListed
	}
	return 5
}

func (n *TeamsNotifier) post(ctx context.Context, card messageCard) error {
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encoding message card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// listingSections renders up to max listings as card sections.
func listingSections(entries []types.Classified, max int) []cardSection {
	if len(entries) > max {
		entries = entries[:max]
	}
	sections := make([]cardSection, 0, len(entries))
	for _, c := range entries {
		l := c.Listing
		facts := []cardFact{
			{Name: "発注機関", Value: l.Organization},
			{Name: "地域", Value: l.Region},
			{Name: "スコア", Value: fmt.Sprintf("%d (%s)", l.RelevanceScore, c.Tier)},
		}
		if l.BudgetAmount != nil {
			facts = append(facts, cardFact{Name: "予算", Value: fmt.Sprintf("%d円", *l.BudgetAmount)})
		}
		if !l.DeadlineDate.IsZero() {
			facts = append(facts, cardFact{Name: "締切", Value: l.DeadlineDate.Format("2006-01-02")})
		}
		if len(l.KeywordsMatched) > 0 {
			facts = append(facts, cardFact{Name: "キーワード", Value: strings.Join(l.KeywordsMatched, ", ")})
		}
		sections = append(sections, cardSection{
			ActivityTitle: fmt.Sprintf("[%s](%s)", l.Title, l.SourceURL),
			Facts:         facts,
		})
	}
	return sections
}

// topByTier returns the high-tier entries first, then medium, preserving
// relative order within a tier.
func topByTier(entries []types.Classified, max int) []types.Classified {
	var out []types.Classified
	for _, tier := range []types.Tier{types.TierHigh, types.TierMedium} {
		for _, c := range entries {
			if c.Tier == tier {
				out = append(out, c)
				if len(out) == max {
					return out
				}
			}
		}
	}
	return out
}

// Noop is a Notifier that records nothing and always succeeds; used when
// no webhook is configured.
type Noop struct{}

// SendImmediate implements the notifier contract as a no-op.
func (Noop) SendImmediate(context.Context, []types.Classified) error { return nil }

// SendSummary implements the notifier contract as a no-op.
func (Noop) SendSummary(context.Context, []types.Classified, types.RunReport) error { return nil }

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/bidradar/internal/httputil"
	"github.com/pdiddy/bidradar/pkg/types"
)

// kkjAPIBase is the government procurement portal search endpoint.
// Declared as a var so tests can substitute an httptest server.
var kkjAPIBase = "http://www.kkj.go.jp/api/"

// defaultQueryTranslations maps target keywords to the ASCII query terms
// the portal search handles reliably. This is deployment data; unknown
// keywords are sent as-is.
var defaultQueryTranslations = map[string]string{
	"データ入力":  "data entry",
	"入力作業":   "data entry",
	"キッティング": "kitting",
	"PC設定":   "PC setup",
	"コールセンター": "call center",
	"電話受付":   "telephone reception",
	"事務業務":   "office work",
	"システム構築": "system construction",
}

// KKJAdapter queries the government procurement portal API, one search per
// configured keyword, and extracts the result fields.
type KKJAdapter struct {
	Client       *http.Client
	Keywords     []string
	Translations map[string]string
	Config       types.CollectConfig
}

// NewKKJAdapter returns an adapter over the given keyword list.
func NewKKJAdapter(client *http.Client, keywords []string, cfg types.CollectConfig) *KKJAdapter {
	translations := cfg.QueryTranslations
	if len(translations) == 0 {
		translations = defaultQueryTranslations
	}
	return &KKJAdapter{
		Client:       client,
		Keywords:     keywords,
		Translations: translations,
		Config:       cfg,
	}
}

// Name returns the adapter identifier.
func (a *KKJAdapter) Name() string { return "government_api" }

// Fetch runs one portal search per keyword and merges the results. A fixed
// delay separates consecutive requests; each request retries a bounded
// number of times with a fixed inter-attempt delay. A failing keyword
// search contributes nothing; the fetch fails as a whole only when every
// keyword search fails.
func (a *KKJAdapter) Fetch(ctx context.Context) ([]types.RawListing, error) {
	var all []types.RawListing
	failed := 0
	var lastErr error

	for i, kw := range a.Keywords {
		if i > 0 && a.Config.SourceDelay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(a.Config.SourceDelay):
			}
		}

		query := kw
		if t, ok := a.Translations[kw]; ok {
			query = t
		}

		entries, err := a.search(ctx, query)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("keyword %q: %w", kw, err)
			continue
		}
		all = append(all, entries...)
	}

	if failed == len(a.Keywords) && lastErr != nil {
		return nil, fmt.Errorf("all %d keyword searches failed, last: %w", failed, lastErr)
	}
	return all, nil
}

func (a *KKJAdapter) search(ctx context.Context, query string) ([]types.RawListing, error) {
	u := fmt.Sprintf("%s?Query=%s", kkjAPIBase, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, a.Config.RetryCount, a.Config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("portal API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("portal API returned HTTP %d", resp.StatusCode)
	}

	var doc kkjDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing portal response: %w", err)
	}

	listings := make([]types.RawListing, 0, len(doc.Results.Items))
	for _, item := range doc.Results.Items {
		listings = append(listings, types.RawListing{
			Title:        item.ProjectName,
			Description:  item.ProjectDescription,
			Organization: item.OrganizationName,
			Region:       item.PrefectureName,
			Published:    item.Date,
			Deadline:     item.CftIssueDate,
			SourceURL:    item.ExternalDocumentURI,
			SourceType:   a.Name(),
		})
	}
	return listings, nil
}

// kkjDocument mirrors the portal's XML response envelope. No XMLName is
// pinned: the portal has shipped more than one root element name.
type kkjDocument struct {
	Results kkjResults `xml:"SearchResults"`
}

type kkjResults struct {
	Hits  int       `xml:"SearchHits"`
	Items []kkjItem `xml:"SearchResult"`
}

type kkjItem struct {
	ProjectName         string `xml:"ProjectName"`
	ProjectDescription  string `xml:"ProjectDescription"`
	OrganizationName    string `xml:"OrganizationName"`
	PrefectureName      string `xml:"PrefectureName"`
	Date                string `xml:"Date"`
	CftIssueDate        string `xml:"CftIssueDate"`
	ExternalDocumentURI string `xml:"ExternalDocumentURI"`
}

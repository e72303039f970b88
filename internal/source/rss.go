// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/bidradar/internal/httputil"
	"github.com/pdiddy/bidradar/pkg/types"
)

// maxEntriesPerFeed bounds how many items one feed contributes per fetch.
const maxEntriesPerFeed = 20

// DefaultFeedCatalog lists the municipal and agency feeds polled when the
// configuration does not supply its own catalog.
func DefaultFeedCatalog() []types.FeedSource {
	return []types.FeedSource{
		{Name: "中小企業基盤整備機構本部", URL: "https://www.smrj.go.jp/org/info/bid/info_bid.xml", Kind: "agency"},
		{Name: "中小企業基盤整備機構関東", URL: "https://www.smrj.go.jp/regional_hq/kanto/bid/info_bid.xml", Kind: "agency"},
		{Name: "中小企業基盤整備機構東北", URL: "https://www.smrj.go.jp/regional_hq/tohoku/bid/info_bid.xml", Kind: "agency"},
		{Name: "中小企業基盤整備機構中部", URL: "https://www.smrj.go.jp/regional_hq/chubu/bid/info_bid.xml", Kind: "agency"},
		{Name: "中小企業基盤整備機構近畿", URL: "https://www.smrj.go.jp/regional_hq/kinki/bid/info_bid.xml", Kind: "agency"},
		{Name: "中小企業基盤整備機構九州", URL: "https://www.smrj.go.jp/regional_hq/kyushu/bid/info_bid.xml", Kind: "agency"},
		{Name: "厚生労働省報道発表", URL: "https://www.mhlw.go.jp/stf/news.rdf", Kind: "ministry"},
		{Name: "総務省報道資料", URL: "https://www.soumu.go.jp/menu_news/news.xml", Kind: "ministry"},
		{Name: "東京都報道発表", URL: "https://www.metro.tokyo.lg.jp/tosei/hodohappyo/press/rss.xml", Kind: "prefecture"},
		{Name: "大阪府報道発表", URL: "https://www.pref.osaka.lg.jp/rss/event.xml", Kind: "prefecture"},
		{Name: "福岡県報道発表", URL: "https://www.pref.fukuoka.lg.jp/rss/jigyousya.xml", Kind: "prefecture"},
	}
}

// FeedAdapter polls a catalog of municipal and agency feeds. Feed items
// are press releases of every kind, so titles are pre-screened against the
// keyword list before a raw listing is emitted.
type FeedAdapter struct {
	Client   *http.Client
	Feeds    []types.FeedSource
	Keywords []string
	Config   types.CollectConfig
}

// NewFeedAdapter returns an adapter over the given catalog, falling back
// to the built-in one when the catalog is empty.
func NewFeedAdapter(client *http.Client, feeds []types.FeedSource, keywords []string, cfg types.CollectConfig) *FeedAdapter {
	if len(feeds) == 0 {
		feeds = DefaultFeedCatalog()
	}
	return &FeedAdapter{Client: client, Feeds: feeds, Keywords: keywords, Config: cfg}
}

// Name returns the adapter identifier.
func (a *FeedAdapter) Name() string { return "rss_feed" }

// Fetch polls each feed in the catalog with a fixed delay between feeds.
// One unreachable or malformed feed contributes nothing; the fetch fails
// as a whole only when every feed fails.
func (a *FeedAdapter) Fetch(ctx context.Context) ([]types.RawListing, error) {
	var all []types.RawListing
	failed := 0
	var lastErr error

	for i, feed := range a.Feeds {
		if i > 0 && a.Config.SourceDelay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(a.Config.SourceDelay):
			}
		}

		entries, err := a.collect(ctx, feed)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("feed %s: %w", feed.Name, err)
			continue
		}
		all = append(all, entries...)
	}

	if failed == len(a.Feeds) && lastErr != nil {
		return nil, fmt.Errorf("all %d feeds failed, last: %w", failed, lastErr)
	}
	return all, nil
}

func (a *FeedAdapter) collect(ctx context.Context, feed types.FeedSource) ([]types.RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, a.Config.RetryCount, a.Config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	if len(items) > maxEntriesPerFeed {
		items = items[:maxEntriesPerFeed]
	}

	var listings []types.RawListing
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" || !titleMatches(title, a.Keywords) {
			continue
		}
		listings = append(listings, types.RawListing{
			Title:        title,
			Description:  stripHTML(item.Description),
			Organization: feed.Name,
			Region:       regionForFeed(feed),
			Published:    strings.TrimSpace(item.PubDate),
			SourceURL:    strings.TrimSpace(item.Link),
			SourceType:   a.Name(),
		})
	}
	return listings, nil
}

// titleMatches reports whether the title contains any target keyword.
func titleMatches(title string, keywords []string) bool {
	folded := strings.ToLower(title)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// regionForFeed derives a region from a prefecture-level feed name;
// agency and ministry feeds publish nationwide.
func regionForFeed(feed types.FeedSource) string {
	if feed.Kind != "prefecture" {
		return types.RegionNationwide
	}
	if idx := strings.IndexAny(feed.Name, "都道府県"); idx >= 0 {
		return feed.Name[:idx+len("都")]
	}
	return types.RegionNationwide
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes markup tags and collapses whitespace.
func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// feedItem is the common shape of an RSS 2.0 <item> or RDF item.
type feedItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Date        string `xml:"date"`
}

type rssDocument struct {
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
	// RDF feeds place items at the document root.
	Items []feedItem `xml:"item"`
}

// parseFeed handles both RSS 2.0 (items inside <channel>) and RDF 1.0
// (items at the root, dc:date instead of pubDate).
func parseFeed(body []byte) ([]feedItem, error) {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing feed XML: %w", err)
	}

	items := doc.Channel.Items
	if len(items) == 0 {
		items = doc.Items
	}
	for i := range items {
		if items[i].PubDate == "" {
			items[i].PubDate = items[i].Date
		}
	}
	return items, nil
}

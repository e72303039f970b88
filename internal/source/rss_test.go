// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/bidradar/pkg/types"
)

const rss2Fixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>入札情報</title>
    <item>
      <title>データ入力業務の一般競争入札について</title>
      <link>https://example.com/bid/1</link>
      <description>&lt;p&gt;帳票の&lt;b&gt;データ入力&lt;/b&gt;業務&lt;/p&gt;</description>
      <pubDate>Thu, 20 Aug 2026 10:00:00 +0900</pubDate>
    </item>
    <item>
      <title>夏祭りのお知らせ</title>
      <link>https://example.com/news/2</link>
      <pubDate>Wed, 19 Aug 2026 10:00:00 +0900</pubDate>
    </item>
  </channel>
</rss>`

const rdfFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/"
         xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel rdf:about="https://example.com/">
    <title>報道発表</title>
  </channel>
  <item rdf:about="https://example.com/press/1">
    <title>コールセンター運営業務の委託について</title>
    <link>https://example.com/press/1</link>
    <dc:date>2026-08-21</dc:date>
  </item>
</rdf:RDF>`

func TestParseFeedRSS2(t *testing.T) {
	items, err := parseFeed([]byte(rss2Fixture))
	if err != nil {
		t.Fatalf("parseFeed() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Title != "データ入力業務の一般競争入札について" {
		t.Errorf("title = %q", items[0].Title)
	}
	if items[0].PubDate != "Thu, 20 Aug 2026 10:00:00 +0900" {
		t.Errorf("pubDate = %q", items[0].PubDate)
	}
}

func TestParseFeedRDF(t *testing.T) {
	items, err := parseFeed([]byte(rdfFixture))
	if err != nil {
		t.Fatalf("parseFeed() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	// RDF feeds carry dc:date instead of pubDate.
	if items[0].PubDate != "2026-08-21" {
		t.Errorf("pubDate = %q, want the dc:date fallback", items[0].PubDate)
	}
}

func TestFeedFetchScreensTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rss2Fixture)
	}))
	defer srv.Close()

	feeds := []types.FeedSource{{Name: "東京都報道発表", URL: srv.URL, Kind: "prefecture"}}
	a := NewFeedAdapter(http.DefaultClient, feeds, []string{"データ入力"}, types.CollectConfig{RetryCount: 1})

	raw, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	// Only the item whose title carries a keyword survives the screen.
	if len(raw) != 1 {
		t.Fatalf("raw = %d, want 1", len(raw))
	}
	got := raw[0]
	if got.Title != "データ入力業務の一般競争入札について" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Description != "帳票の データ入力 業務" {
		t.Errorf("description = %q, want the HTML stripped", got.Description)
	}
	if got.Organization != "東京都報道発表" {
		t.Errorf("organization = %q, want the feed name", got.Organization)
	}
	if got.Region != "東京都" {
		t.Errorf("region = %q, want the prefecture from the feed name", got.Region)
	}
	if got.SourceType != "rss_feed" {
		t.Errorf("source type = %q", got.SourceType)
	}
}

func TestFeedFetchOneFeedFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, rss2Fixture)
	}))
	defer srv.Close()

	feeds := []types.FeedSource{
		{Name: "壊れた配信", URL: srv.URL + "/bad", Kind: "agency"},
		{Name: "東京都報道発表", URL: srv.URL + "/ok", Kind: "prefecture"},
	}
	a := NewFeedAdapter(http.DefaultClient, feeds, []string{"データ入力"}, types.CollectConfig{RetryCount: 1})

	raw, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil while any feed succeeds", err)
	}
	if len(raw) != 1 {
		t.Errorf("raw = %d, want 1 from the healthy feed", len(raw))
	}
}

func TestFeedFetchAllFeedsFailing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	feeds := []types.FeedSource{
		{Name: "a", URL: srv.URL + "/a", Kind: "agency"},
		{Name: "b", URL: srv.URL + "/b", Kind: "agency"},
	}
	a := NewFeedAdapter(http.DefaultClient, feeds, []string{"データ入力"}, types.CollectConfig{RetryCount: 1})

	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() must error when every feed fails")
	}
}

func TestRegionForFeed(t *testing.T) {
	tests := []struct {
		feed types.FeedSource
		want string
	}{
		{types.FeedSource{Name: "東京都報道発表", Kind: "prefecture"}, "東京都"},
		{types.FeedSource{Name: "大阪府報道発表", Kind: "prefecture"}, "大阪府"},
		{types.FeedSource{Name: "福岡県報道発表", Kind: "prefecture"}, "福岡県"},
		{types.FeedSource{Name: "厚生労働省報道発表", Kind: "ministry"}, types.RegionNationwide},
		{types.FeedSource{Name: "名称のみ", Kind: "prefecture"}, types.RegionNationwide},
	}
	for _, tt := range tests {
		if got := regionForFeed(tt.feed); got != tt.want {
			t.Errorf("regionForFeed(%s) = %q, want %q", tt.feed.Name, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>入札  <b>情報</b></p>\n詳細")
	if got != "入札 情報 詳細" {
		t.Errorf("stripHTML = %q", got)
	}
}

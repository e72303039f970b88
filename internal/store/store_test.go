// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/bidradar/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StorageConfig{Path: filepath.Join(t.TempDir(), "bids.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleListing(title string) types.Listing {
	budget := int64(5_000_000)
	return types.Listing{
		Title:           title,
		Description:     "帳票のデータ入力業務",
		Organization:    "○○市",
		Region:          "東京都",
		BudgetAmount:    &budget,
		PublishedDate:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		DeadlineDate:    time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		SourceURL:       "https://example.com/bid/1",
		SourceType:      "government_api",
		RelevanceScore:  70,
		KeywordsMatched: []string{"データ入力"},
	}
}

func TestInsertAndQueryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, sampleListing("データ入力業務委託"))
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := s.TopByScore(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	sl := got[0]
	assert.Equal(t, "データ入力業務委託", sl.Title)
	assert.Equal(t, "○○市", sl.Organization)
	assert.Equal(t, 70, sl.RelevanceScore)
	require.NotNil(t, sl.BudgetAmount)
	assert.Equal(t, int64(5_000_000), *sl.BudgetAmount)
	assert.Equal(t, []string{"データ入力"}, sl.KeywordsMatched)
	assert.Equal(t, "2026-08-20", sl.PublishedDate.Format("2006-01-02"))
	assert.NotEmpty(t, sl.CreatedAt)
}

func TestInsertAbsentFields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := sampleListing("予算未記載の案件")
	l.BudgetAmount = nil
	l.PublishedDate = time.Time{}
	l.DeadlineDate = time.Time{}
	l.KeywordsMatched = nil

	_, err := s.Insert(ctx, l)
	require.NoError(t, err)

	got, err := s.TopByScore(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].BudgetAmount)
	assert.True(t, got[0].PublishedDate.IsZero())
	assert.True(t, got[0].DeadlineDate.IsZero())
}

func TestExistsByTitleAndOrg(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleListing("データ入力業務委託"))
	require.NoError(t, err)

	exists, err := s.ExistsByTitleAndOrg(ctx, "データ入力業務委託", "○○市")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same title under a different organization is a distinct listing.
	exists, err = s.ExistsByTitleAndOrg(ctx, "データ入力業務委託", "△△県")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.ExistsByTitleAndOrg(ctx, "別案件", "○○市")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTopByScoreOrderAndFloor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, e := range []struct {
		title string
		score int
	}{
		{"低スコア案件", 20},
		{"高スコア案件", 90},
		{"中スコア案件", 65},
	} {
		l := sampleListing(e.title)
		l.RelevanceScore = e.score
		_, err := s.Insert(ctx, l)
		require.NoError(t, err)
	}

	got, err := s.TopByScore(ctx, 30, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "高スコア案件", got[0].Title)
	assert.Equal(t, "中スコア案件", got[1].Title)

	// Limit is honored.
	got, err = s.TopByScore(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "高スコア案件", got[0].Title)
}

func TestPurgeOlderThan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sampleListing("新しい案件"))
	require.NoError(t, err)

	// Backdate one row past the cutoff.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO procurement_entries (title, organization, created_at)
		 VALUES (?, ?, datetime('now', '-40 days'))`,
		"古い案件", "○○市",
	)
	require.NoError(t, err)

	removed, err := s.PurgeOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	stats, err := s.Stats(ctx, types.ClassifyConfig{HighThreshold: 80, MediumThreshold: 60})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, e := range []struct {
		title  string
		source string
		score  int
	}{
		{"案件A", "government_api", 85},
		{"案件B", "government_api", 65},
		{"案件C", "rss_feed", 40},
	} {
		l := sampleListing(e.title)
		l.SourceType = e.source
		l.RelevanceScore = e.score
		_, err := s.Insert(ctx, l)
		require.NoError(t, err)
	}

	stats, err := s.Stats(ctx, types.ClassifyConfig{HighThreshold: 80, MediumThreshold: 60})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.BySourceType["government_api"])
	assert.Equal(t, 1, stats.BySourceType["rss_feed"])
	assert.Equal(t, 1, stats.HighCount)
	assert.Equal(t, 1, stats.MediumCount)
}

func TestRecordNotification(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordNotification(ctx, "summary", 5, true, ""))
	require.NoError(t, s.RecordNotification(ctx, "immediate", 2, false, "webhook down"))

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notification_history WHERE success = 0`,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bids.db")
	s, err := Open(types.StorageConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
}
